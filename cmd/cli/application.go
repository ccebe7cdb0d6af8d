package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	buildcmd "github.com/tyemirov/reactor/cmd/cli/build"
	"github.com/tyemirov/reactor/internal/execshell"
	"github.com/tyemirov/reactor/internal/utils"
	flagutils "github.com/tyemirov/reactor/internal/utils/flags"
	"github.com/tyemirov/reactor/internal/version"
)

const (
	applicationNameConstant                            = "reactor"
	applicationShortDescriptionConstant                = "Task-dependency build orchestration"
	applicationLongDescriptionConstant                 = "reactor runs build files whose tasks declare dependencies instead of a fixed script, computing one deterministic plan per run."
	configFileFlagNameConstant                         = "config"
	configFileFlagUsageConstant                        = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                           = "log-level"
	logLevelFlagUsageConstant                          = "Override the configured log level."
	logFormatFlagNameConstant                          = "log-format"
	logFormatFlagUsageConstant                         = "Override the configured log format (structured or console)."
	versionFlagNameConstant                            = "version"
	versionFlagUsageConstant                           = "Print the application version and exit."
	versionCommandUseNameConstant                      = "version"
	versionCommandShortDescriptionConstant             = "Print the application version"
	versionOutputTemplateConstant                      = "%s\n"
	commonConfigurationKeyConstant                     = "common"
	commonLogLevelConfigKeyConstant                    = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant                   = commonConfigurationKeyConstant + ".log_format"
	buildConfigurationKeyConstant                      = "build"
	buildFileConfigKeyConstant                         = buildConfigurationKeyConstant + ".file"
	buildContinueOnFailureConfigKeyConstant            = buildConfigurationKeyConstant + ".continue_on_failure"
	environmentPrefixConstant                          = "REACTOR"
	configurationNameConstant                          = "config"
	configurationTypeConstant                          = "yaml"
	configurationInitializedMessageConstant            = "configuration initialized"
	configurationLogLevelFieldConstant                 = "log_level"
	configurationLogFormatFieldConstant                = "log_format"
	configurationFileFieldConstant                     = "config_file"
	xdgConfigHomeEnvironmentVariableConstant           = "XDG_CONFIG_HOME"
	configurationLoadErrorTemplateConstant             = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant                = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant                    = "unable to flush logger: %w"
	configurationInitializedConsoleTemplateConstant    = "%s | log level=%s | log format=%s | config file=%s"
	defaultConfigurationSearchPathConstant             = "."
	userConfigurationDirectoryNameConstant             = ".reactor"
	applicationConfigurationDirectoryNameConstant      = "reactor"
	configurationSearchPathEnvironmentVariableConstant = "REACTOR_CONFIG_SEARCH_PATH"
)

type loggerOutputsFactory interface {
	CreateLoggerOutputs(utils.LogLevel, utils.LogFormat) (utils.LoggerOutputs, error)
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          loggerOutputsFactory
	logger                 *zap.Logger
	consoleLogger          *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
	commandRunner          execshell.CommandRunner
	versionFlag            bool
	versionResolver        func(context.Context) string
	exitFunction           func(int)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	application := &Application{
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		commandRunner:          execshell.NewOSCommandRunner(),
		configuration:          ApplicationConfiguration{Build: buildcmd.DefaultCommandConfiguration()},
	}
	application.versionResolver = application.resolveVersion
	application.exitFunction = os.Exit

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		application.resolveConfigurationSearchPaths(),
	)

	embeddedConfigurationData, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	application.configurationLoader.SetEmbeddedConfiguration(embeddedConfigurationData, embeddedConfigurationType)

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if initializationError := application.initializeConfiguration(command); initializationError != nil {
				return initializationError
			}

			versionRequested := application.versionFlag
			if command != nil {
				if flagValue, flagChanged, flagError := flagutils.BoolFlag(command, versionFlagNameConstant); flagError == nil && flagChanged {
					versionRequested = flagValue
				}
			}

			if versionRequested {
				application.printVersion(command)
				application.exitFunction(0)
			}

			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().BoolVar(&application.versionFlag, versionFlagNameConstant, false, versionFlagUsageConstant)

	versionCommand := &cobra.Command{
		Use:           versionCommandUseNameConstant,
		Short:         versionCommandShortDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			application.printVersion(command)
			return nil
		},
	}
	cobraCommand.AddCommand(versionCommand)

	buildBuilder := buildcmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() buildcmd.CommandConfiguration {
			return application.configuration.Build
		},
		CommandRunner: execshell.CommandRunnerFunc(func(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
			return application.commandRunner.Run(executionContext, command)
		}),
	}
	for _, build := range []func() (*cobra.Command, error){buildBuilder.BuildRunCommand, buildBuilder.BuildPlanCommand, buildBuilder.BuildTasksCommand} {
		if subcommand, buildError := build(); buildError == nil {
			subcommand.SilenceUsage = true
			subcommand.SilenceErrors = true
			cobraCommand.AddCommand(subcommand)
		}
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	application.rootCommand.SetArgs(os.Args[1:])

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) resolveConfigurationSearchPaths() []string {
	overrideValue := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentVariableConstant))
	if len(overrideValue) == 0 {
		return append([]string{defaultConfigurationSearchPathConstant}, application.resolveUserConfigurationDirectoryPaths()...)
	}

	overridePaths := strings.FieldsFunc(overrideValue, func(candidate rune) bool {
		return candidate == os.PathListSeparator
	})

	cleanedPaths := make([]string, 0, len(overridePaths))
	for _, pathCandidate := range overridePaths {
		trimmedCandidate := strings.TrimSpace(pathCandidate)
		if len(trimmedCandidate) == 0 {
			continue
		}
		cleanedPaths = append(cleanedPaths, trimmedCandidate)
	}

	if len(cleanedPaths) == 0 {
		return []string{defaultConfigurationSearchPathConstant}
	}

	return cleanedPaths
}

// resolveUserConfigurationDirectoryPaths lists $XDG_CONFIG_HOME/reactor, the user config
// directory, and $HOME/.reactor without duplicates.
func (application *Application) resolveUserConfigurationDirectoryPaths() []string {
	userConfigurationDirectoryPaths := make([]string, 0, 3)

	appendConfigurationDirectory := func(baseDirectoryPath string, directoryName string) {
		trimmedBaseDirectoryPath := strings.TrimSpace(baseDirectoryPath)
		if len(trimmedBaseDirectoryPath) == 0 {
			return
		}

		candidateDirectoryPath := filepath.Join(trimmedBaseDirectoryPath, directoryName)
		for _, existingDirectoryPath := range userConfigurationDirectoryPaths {
			if existingDirectoryPath == candidateDirectoryPath {
				return
			}
		}

		userConfigurationDirectoryPaths = append(userConfigurationDirectoryPaths, candidateDirectoryPath)
	}

	appendConfigurationDirectory(os.Getenv(xdgConfigHomeEnvironmentVariableConstant), applicationConfigurationDirectoryNameConstant)

	if userConfigurationBaseDirectoryPath, userConfigurationDirectoryError := os.UserConfigDir(); userConfigurationDirectoryError == nil {
		appendConfigurationDirectory(userConfigurationBaseDirectoryPath, applicationConfigurationDirectoryNameConstant)
	}

	if userHomeDirectoryPath, userHomeDirectoryError := os.UserHomeDir(); userHomeDirectoryError == nil {
		appendConfigurationDirectory(userHomeDirectoryPath, userConfigurationDirectoryNameConstant)
	}

	return userConfigurationDirectoryPaths
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:         string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant:        string(utils.LogFormatStructured),
		buildFileConfigKeyConstant:              buildcmd.DefaultCommandConfiguration().BuildFile,
		buildContinueOnFailureConfigKeyConstant: false,
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration
	application.configuration.Build = application.configuration.Build.Sanitize()

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	if application.logger == nil {
		application.logger = zap.NewNop()
	}

	application.consoleLogger = loggerOutputs.ConsoleLogger
	if application.consoleLogger == nil {
		application.consoleLogger = zap.NewNop()
	}

	application.logConfigurationInitialization()

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithExecutionFlags(updatedContext, flagutils.CollectExecutionFlags(command))
		updatedContext = application.commandContextAccessor.WithLogLevel(updatedContext, application.configuration.Common.LogLevel)
		updatedContext = application.commandContextAccessor.WithBuildContext(updatedContext, utils.BuildContext{FilePath: application.configuration.Build.BuildFile})

		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

// InitializeForCommand prepares application state for the provided command name without executing command logic.
func (application *Application) InitializeForCommand(commandUse string) error {
	command := &cobra.Command{Use: commandUse}
	return application.initializeConfiguration(command)
}

// ConfigFileUsed returns the configuration file path used during initialization.
func (application *Application) ConfigFileUsed() string {
	return application.configurationMetadata.ConfigFileUsed
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) logConfigurationInitialization() {
	if !strings.EqualFold(strings.TrimSpace(application.configuration.Common.LogLevel), string(utils.LogLevelDebug)) {
		return
	}

	if application.humanReadableLoggingEnabled() {
		bannerMessage := fmt.Sprintf(
			configurationInitializedConsoleTemplateConstant,
			configurationInitializedMessageConstant,
			application.configuration.Common.LogLevel,
			application.configuration.Common.LogFormat,
			application.configurationMetadata.ConfigFileUsed,
		)
		application.consoleLogger.Debug(bannerMessage)
		return
	}

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
}

func (application *Application) resolveVersion(executionContext context.Context) string {
	dependencies := version.Dependencies{}
	shellExecutor, executorError := execshell.NewShellExecutor(application.logger, application.commandRunner, application.humanReadableLoggingEnabled())
	if executorError == nil {
		dependencies.CommandExecutor = shellExecutor
	}

	resolved := version.Detect(executionContext, dependencies)
	trimmed := strings.TrimSpace(resolved)
	if len(trimmed) == 0 {
		return resolved
	}
	return trimmed
}

func (application *Application) printVersion(command *cobra.Command) {
	versionString := application.versionResolver(command.Context())
	fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, versionString)
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}

	if syncError := application.syncLoggerInstance(application.consoleLogger); syncError != nil {
		return syncError
	}

	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.EBADF):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
