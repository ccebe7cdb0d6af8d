// Package build provides the run, plan, and tasks commands operating on a build file.
package build

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/reactor/internal/buildfile"
	"github.com/tyemirov/reactor/internal/execshell"
	"github.com/tyemirov/reactor/internal/lintreport"
	"github.com/tyemirov/reactor/internal/reactor"
	"github.com/tyemirov/reactor/internal/utils"
	flagutils "github.com/tyemirov/reactor/internal/utils/flags"
)

const (
	lintPluginNameConstant              = "lint"
	buildFileResolveErrorTemplate       = "unable to resolve build file path %q: %w"
	buildFileInstallErrorTemplate       = "unable to register build file %s: %w"
	goalsRequiredMessageConstant        = "no goals requested and the build file declares no default_goals"
	propertyAssignmentErrorTemplate     = "invalid property assignment %q (expected key=value)"
	propertyAssignmentSeparatorConstant = "="
	buildFileLoadedLogMessageConstant   = "build file loaded"
	buildFileLogFieldConstant           = "build_file"
	taskCountLogFieldConstant           = "task_count"
)

// LoggerProvider yields the logger configured for the current command invocation.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the build commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	CommandRunner                execshell.CommandRunner
}

type workspace struct {
	engine        *reactor.Reactor
	buildFile     buildfile.Configuration
	buildFilePath string
	baseDirectory string
}

func (builder *CommandBuilder) logger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	if logger := builder.LoggerProvider(); logger != nil {
		return logger
	}
	return zap.NewNop()
}

func (builder *CommandBuilder) humanReadableLogging() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) commandRunner() execshell.CommandRunner {
	if builder.CommandRunner == nil {
		return execshell.NewOSCommandRunner()
	}
	return builder.CommandRunner
}

// resolveBuildFilePath prefers the --file flag, then the command context, then configuration.
func (builder *CommandBuilder) resolveBuildFilePath(command *cobra.Command) string {
	if command != nil {
		if flagValue, flagChanged, flagError := flagutils.StringFlag(command, flagutils.BuildFileFlagName); flagError == nil && flagChanged && len(strings.TrimSpace(flagValue)) > 0 {
			return strings.TrimSpace(flagValue)
		}
		if buildContext, available := utils.NewCommandContextAccessor().BuildContext(command.Context()); available {
			return buildContext.FilePath
		}
	}
	return builder.resolveConfiguration().BuildFile
}

func (builder *CommandBuilder) loadWorkspace(command *cobra.Command) (workspace, error) {
	requestedPath := builder.resolveBuildFilePath(command)
	absolutePath, absoluteError := filepath.Abs(requestedPath)
	if absoluteError != nil {
		return workspace{}, fmt.Errorf(buildFileResolveErrorTemplate, requestedPath, absoluteError)
	}

	configuration, loadError := buildfile.LoadConfiguration(absolutePath)
	if loadError != nil {
		return workspace{}, loadError
	}

	logger := builder.logger()
	shellExecutor, executorError := execshell.NewShellExecutor(logger, builder.commandRunner(), builder.humanReadableLogging())
	if executorError != nil {
		return workspace{}, executorError
	}

	engine := reactor.New(logger)
	installer := buildfile.Installer{
		Executor: shellExecutor,
		Plugins: map[string]buildfile.PluginRegistrar{
			lintPluginNameConstant: lintreport.Plugin{Executor: shellExecutor, Logger: logger},
		},
	}
	if installError := installer.Install(configuration, engine.Registry()); installError != nil {
		return workspace{}, fmt.Errorf(buildFileInstallErrorTemplate, absolutePath, installError)
	}

	logger.Debug(
		buildFileLoadedLogMessageConstant,
		zap.String(buildFileLogFieldConstant, absolutePath),
		zap.Int(taskCountLogFieldConstant, len(engine.Registry().Names())),
	)

	return workspace{
		engine:        engine,
		buildFile:     configuration,
		buildFilePath: absolutePath,
		baseDirectory: filepath.Dir(absolutePath),
	}, nil
}

func resolveGoals(arguments []string, configuration buildfile.Configuration) ([]string, error) {
	goals := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if trimmed := strings.TrimSpace(argument); len(trimmed) > 0 {
			goals = append(goals, trimmed)
		}
	}
	if len(goals) == 0 {
		goals = append(goals, configuration.DefaultGoals...)
	}
	if len(goals) == 0 {
		return nil, errors.New(goalsRequiredMessageConstant)
	}
	return goals, nil
}

func (current workspace) projectName() string {
	if len(current.buildFile.Project.Name) > 0 {
		return current.buildFile.Project.Name
	}
	return filepath.Base(current.baseDirectory)
}

// ParsePropertyAssignments converts key=value pairs into run-context values. Values are typed
// with reactor.ParseValue.
func ParsePropertyAssignments(assignments []string) (map[string]reactor.Value, error) {
	values := make(map[string]reactor.Value, len(assignments))
	for _, assignment := range assignments {
		propertyName, rawValue, found := strings.Cut(assignment, propertyAssignmentSeparatorConstant)
		propertyName = strings.TrimSpace(propertyName)
		if !found || len(propertyName) == 0 {
			return nil, fmt.Errorf(propertyAssignmentErrorTemplate, assignment)
		}
		values[propertyName] = reactor.ParseValue(rawValue)
	}
	return values, nil
}

// mergeProperties layers configuration defaults, build file properties, and CLI overrides.
func mergeProperties(configured map[string]any, declared map[string]reactor.Value, overrides map[string]reactor.Value) map[string]reactor.Value {
	merged := make(map[string]reactor.Value, len(configured)+len(declared)+len(overrides))
	for propertyName, rawValue := range configured {
		merged[propertyName] = reactor.ValueOf(rawValue)
	}
	for propertyName, value := range declared {
		merged[propertyName] = value
	}
	for propertyName, value := range overrides {
		merged[propertyName] = value
	}
	return merged
}
