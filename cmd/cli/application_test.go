package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/reactor/internal/execshell"
)

const (
	testConfigurationSearchPathEnvironmentName = "REACTOR_CONFIG_SEARCH_PATH"
	testConfigurationFileNameConstant          = "config.yaml"
	testConfigurationContentConstant           = "common:\n  log_level: warn\n  log_format: console\nbuild:\n  file: pipeline.yaml\n  properties:\n    dist_dir: out\n"
	testBuildFileContentConstant               = "project:\n  name: cli\ndefault_goals: [package]\ntasks:\n  - task:\n      name: compile\n      run: [\"go\", \"build\"]\n  - task:\n      name: package\n      depends: [compile]\n      run: [\"tar\", \"-czf\", \"${dist_dir}/app.tgz\"]\n"
)

type stubCommandRunner struct {
	commands []execshell.ShellCommand
}

func (runner *stubCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.commands = append(runner.commands, command)
	return execshell.ExecutionResult{}, nil
}

func isolateConfigurationSearch(t *testing.T) string {
	t.Helper()
	configurationDirectory := t.TempDir()
	t.Setenv(testConfigurationSearchPathEnvironmentName, configurationDirectory)
	return configurationDirectory
}

func resolveSymlinkedPath(t *testing.T, path string) string {
	t.Helper()
	resolved, resolveError := filepath.EvalSymlinks(path)
	require.NoError(t, resolveError)
	return resolved
}

func executeApplication(t *testing.T, application *Application, arguments ...string) (string, error) {
	t.Helper()
	output := &bytes.Buffer{}
	application.rootCommand.SetOut(output)
	application.rootCommand.SetErr(&bytes.Buffer{})
	application.rootCommand.SetArgs(arguments)
	executionError := application.rootCommand.Execute()
	return output.String(), executionError
}

func TestApplicationUsesEmbeddedDefaults(t *testing.T) {
	isolateConfigurationSearch(t)

	application := NewApplication()
	require.NoError(t, application.InitializeForCommand("run"))

	require.Empty(t, application.ConfigFileUsed())
	require.Equal(t, "error", application.configuration.Common.LogLevel)
	require.Equal(t, "structured", application.configuration.Common.LogFormat)
	require.Equal(t, "build.yaml", application.configuration.Build.BuildFile)
	require.False(t, application.configuration.Build.ContinueOnFailure)
}

func TestApplicationLoadsConfigurationFromSearchPath(t *testing.T) {
	configurationDirectory := isolateConfigurationSearch(t)
	configurationPath := filepath.Join(configurationDirectory, testConfigurationFileNameConstant)
	require.NoError(t, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o600))

	application := NewApplication()
	require.NoError(t, application.InitializeForCommand("run"))

	require.Equal(t, resolveSymlinkedPath(t, configurationPath), resolveSymlinkedPath(t, application.ConfigFileUsed()))
	require.Equal(t, "warn", application.configuration.Common.LogLevel)
	require.True(t, application.humanReadableLoggingEnabled())
	require.Equal(t, "pipeline.yaml", application.configuration.Build.BuildFile)
	require.Equal(t, map[string]any{"dist_dir": "out"}, application.configuration.Build.Properties)
}

func TestApplicationEnvironmentOverridesConfiguration(t *testing.T) {
	configurationDirectory := isolateConfigurationSearch(t)
	require.NoError(t, os.WriteFile(filepath.Join(configurationDirectory, testConfigurationFileNameConstant), []byte(testConfigurationContentConstant), 0o600))
	t.Setenv("REACTOR_COMMON_LOG_LEVEL", "error")
	t.Setenv("REACTOR_BUILD_FILE", "ci.yaml")

	application := NewApplication()
	require.NoError(t, application.InitializeForCommand("run"))

	require.Equal(t, "error", application.configuration.Common.LogLevel)
	require.Equal(t, "ci.yaml", application.configuration.Build.BuildFile)
}

func TestApplicationRejectsUnsupportedLogLevel(t *testing.T) {
	isolateConfigurationSearch(t)

	application := NewApplication()
	_, executionError := executeApplication(t, application, "tasks", "--log-level", "verbose")
	require.Error(t, executionError)
	require.Contains(t, executionError.Error(), "unable to create logger")
}

func TestApplicationRunsBuildFile(t *testing.T) {
	configurationDirectory := isolateConfigurationSearch(t)
	require.NoError(t, os.WriteFile(filepath.Join(configurationDirectory, testConfigurationFileNameConstant), []byte(testConfigurationContentConstant), 0o600))

	buildFilePath := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(buildFilePath, []byte(testBuildFileContentConstant), 0o600))

	runner := &stubCommandRunner{}
	application := NewApplication()
	application.commandRunner = runner

	output, executionError := executeApplication(t, application, "run", "--file", buildFilePath, "--log-level", "error")
	require.NoError(t, executionError)
	require.Contains(t, output, "Plan: compile, package\n")
	require.Contains(t, output, "BUILD SUCCEEDED: 2 succeeded, 0 failed, 0 skipped")

	require.Len(t, runner.commands, 2)
	require.Equal(t, []string{"-czf", "out/app.tgz"}, runner.commands[1].Details.Arguments)
}

func TestApplicationPrintsVersion(t *testing.T) {
	isolateConfigurationSearch(t)

	application := NewApplication()
	application.versionResolver = func(context.Context) string { return "v1.2.3" }

	output, executionError := executeApplication(t, application, "version")
	require.NoError(t, executionError)
	require.Equal(t, "v1.2.3\n", output)

	exitCodes := []int{}
	application = NewApplication()
	application.versionResolver = func(context.Context) string { return "v1.2.3" }
	application.exitFunction = func(code int) { exitCodes = append(exitCodes, code) }

	output, executionError = executeApplication(t, application, "--version")
	require.NoError(t, executionError)
	require.Contains(t, output, "v1.2.3\n")
	require.Equal(t, []int{0}, exitCodes)
}

func TestEmbeddedDefaultConfigurationIsYAML(t *testing.T) {
	content, configurationType := EmbeddedDefaultConfiguration()
	require.NotEmpty(t, content)
	require.Equal(t, "yaml", configurationType)
}
