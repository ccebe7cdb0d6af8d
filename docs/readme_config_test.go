package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tyemirov/reactor/internal/buildfile"
	"github.com/tyemirov/reactor/internal/lintreport"
	"github.com/tyemirov/reactor/internal/reactor"
)

const (
	documentationFileNameConstant       = "ARCHITECTURE.md"
	yamlFenceStartConstant              = "```yaml"
	yamlFenceEndConstant                = "```"
	buildFileHeaderMarkerConstant       = "# build.yaml"
	configHeaderMarkerConstant          = "# config.yaml"
	architectureSnippetTemporaryPattern = "architecture-build-*.yaml"
	parentDirectoryReferenceConstant    = ".."
	missingHeaderMessageTemplate        = "Architecture example missing %s marker"
	missingStartFenceMessageConstant    = "Architecture example missing yaml fence start"
	missingEndFenceMessageConstant      = "Architecture example missing yaml fence end"
	lintPluginNameConstant              = "lint"
	defaultTempDirectoryRootConstant    = ""
)

type architectureApplicationConfiguration struct {
	Common struct {
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"common"`
	Build struct {
		File       string         `yaml:"file"`
		Properties map[string]any `yaml:"properties"`
	} `yaml:"build"`
}

func readArchitectureSnippet(testInstance *testing.T, headerMarker string) string {
	testInstance.Helper()
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	documentationPath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, documentationFileNameConstant)
	contentBytes, readError := os.ReadFile(documentationPath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, headerMarker)
	require.NotEqualf(testInstance, -1, headerIndex, missingHeaderMessageTemplate, headerMarker)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])
}

func TestArchitectureBuildFilePlans(testInstance *testing.T) {
	snippetContent := readArchitectureSnippet(testInstance, buildFileHeaderMarkerConstant)

	tempFile, tempFileError := os.CreateTemp(defaultTempDirectoryRootConstant, architectureSnippetTemporaryPattern)
	require.NoError(testInstance, tempFileError)
	testInstance.Cleanup(func() {
		require.NoError(testInstance, os.Remove(tempFile.Name()))
	})
	_, writeError := tempFile.WriteString(snippetContent)
	require.NoError(testInstance, writeError)
	require.NoError(testInstance, tempFile.Close())

	configuration, loadError := buildfile.LoadConfiguration(tempFile.Name())
	require.NoError(testInstance, loadError)

	registry := reactor.NewRegistry()
	installer := buildfile.Installer{Plugins: map[string]buildfile.PluginRegistrar{lintPluginNameConstant: lintreport.Plugin{}}}
	require.NoError(testInstance, installer.Install(configuration, registry))

	testCases := []struct {
		name          string
		goals         []string
		expectedTasks []string
	}{
		{
			name:          "default goals skip linting",
			goals:         configuration.DefaultGoals,
			expectedTasks: []string{"clean", "compile", "test", "package"},
		},
		{
			name:          "requested lint report runs first",
			goals:         []string{lintreport.PublishTaskName, "package"},
			expectedTasks: []string{lintreport.AnalyzeTaskName, lintreport.PublishTaskName, "clean", "compile", "test", "package"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			plan, planError := reactor.Plan(registry, testCase.goals)
			require.NoError(subtest, planError)
			require.Equal(subtest, testCase.expectedTasks, plan.Tasks)
		})
	}
}

func TestArchitectureConfigurationParses(testInstance *testing.T) {
	snippetContent := readArchitectureSnippet(testInstance, configHeaderMarkerConstant)

	var applicationConfiguration architectureApplicationConfiguration
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippetContent), &applicationConfiguration))

	require.NotEmpty(testInstance, applicationConfiguration.Common.LogLevel)
	require.NotEmpty(testInstance, applicationConfiguration.Common.LogFormat)
	require.Equal(testInstance, "build.yaml", applicationConfiguration.Build.File)
	require.Contains(testInstance, applicationConfiguration.Build.Properties, lintreport.CommandPropertyName)
}
