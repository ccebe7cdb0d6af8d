// Package version resolves the application version from build metadata or git tags.
package version

import (
	"context"
	"errors"
	"os"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	"github.com/tyemirov/reactor/internal/execshell"
)

const (
	unknownVersionFallbackConstant            = "unknown"
	buildInfoDevelVersionValue                = "devel"
	gitCommandNameConstant                    = "git"
	gitRevParseSubcommandConstant             = "rev-parse"
	gitShowTopLevelFlagConstant               = "--show-toplevel"
	gitDescribeSubcommandConstant             = "describe"
	gitTagsFlagConstant                       = "--tags"
	gitExactMatchFlagConstant                 = "--exact-match"
	gitLongFlagConstant                       = "--long"
	gitDirtyFlagConstant                      = "--dirty"
	gitTerminalPromptEnvironmentNameConstant  = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentValueConstant = "0"
	commandExecutorMissingMessageConstant     = "command executor not configured"
	semverPrefixConstant                      = "v"
)

// BuildInfoProvider exposes runtime build metadata.
type BuildInfoProvider interface {
	Read() (*debug.BuildInfo, bool)
}

// CommandExecutor runs argv-style commands.
type CommandExecutor interface {
	ExecuteArgv(executionContext context.Context, argv []string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Detector resolves application version strings.
type Detector struct {
	buildInfoProvider BuildInfoProvider
	commandExecutor   CommandExecutor
	workingDirectory  string
}

// Dependencies describes the collaborators required for version detection.
type Dependencies struct {
	BuildInfoProvider BuildInfoProvider
	CommandExecutor   CommandExecutor
	WorkingDirectory  string
}

// NewDetector constructs a Detector with the supplied dependencies or sensible defaults.
func NewDetector(dependencies Dependencies) (*Detector, error) {
	provider := dependencies.BuildInfoProvider
	if provider == nil {
		provider = runtimeBuildInfoProvider{}
	}

	executor := dependencies.CommandExecutor
	if executor == nil {
		shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner(), false)
		if creationError != nil {
			return nil, creationError
		}
		executor = shellExecutor
	}

	workingDirectory := strings.TrimSpace(dependencies.WorkingDirectory)
	if len(workingDirectory) == 0 {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError == nil {
			workingDirectory = currentDirectory
		}
	}

	return &Detector{
		buildInfoProvider: provider,
		commandExecutor:   executor,
		workingDirectory:  workingDirectory,
	}, nil
}

// Detect resolves the application version using the supplied dependencies.
func Detect(executionContext context.Context, dependencies Dependencies) string {
	detector, detectorError := NewDetector(dependencies)
	if detectorError != nil {
		return unknownVersionFallbackConstant
	}
	return detector.Version(executionContext)
}

// Version returns the detected application version string. Only semantic versions are
// accepted from either source.
func (detector *Detector) Version(executionContext context.Context) string {
	if detector == nil {
		return unknownVersionFallbackConstant
	}

	if buildVersion := detector.versionFromBuildInfo(); len(buildVersion) > 0 {
		return buildVersion
	}

	repositoryRoot := detector.resolveRepositoryRoot(executionContext)

	if exactVersion := detector.describeVersion(executionContext, repositoryRoot, gitExactMatchFlagConstant); len(exactVersion) > 0 {
		return exactVersion
	}

	if longVersion := detector.describeVersion(executionContext, repositoryRoot, gitLongFlagConstant, gitDirtyFlagConstant); len(longVersion) > 0 {
		return longVersion
	}

	return unknownVersionFallbackConstant
}

func (detector *Detector) versionFromBuildInfo() string {
	if detector.buildInfoProvider == nil {
		return ""
	}

	buildInfo, available := detector.buildInfoProvider.Read()
	if !available || buildInfo == nil {
		return ""
	}

	trimmedVersion := strings.TrimSpace(buildInfo.Main.Version)
	if strings.EqualFold(trimmedVersion, buildInfoDevelVersionValue) || strings.EqualFold(trimmedVersion, "("+buildInfoDevelVersionValue+")") {
		return ""
	}

	return canonicalVersion(trimmedVersion)
}

func (detector *Detector) resolveRepositoryRoot(executionContext context.Context) string {
	if len(detector.workingDirectory) == 0 {
		return ""
	}

	executionResult, executionError := detector.executeGit(executionContext, detector.workingDirectory, gitRevParseSubcommandConstant, gitShowTopLevelFlagConstant)
	if executionError != nil {
		return detector.workingDirectory
	}

	trimmedPath := strings.TrimSpace(executionResult.StandardOutput)
	if len(trimmedPath) == 0 {
		return detector.workingDirectory
	}

	return trimmedPath
}

func (detector *Detector) describeVersion(executionContext context.Context, repositoryRoot string, flags ...string) string {
	arguments := append([]string{gitDescribeSubcommandConstant, gitTagsFlagConstant}, flags...)
	executionResult, executionError := detector.executeGit(executionContext, repositoryRoot, arguments...)
	if executionError != nil {
		return ""
	}

	return canonicalVersion(strings.TrimSpace(executionResult.StandardOutput))
}

func (detector *Detector) executeGit(executionContext context.Context, workingDirectory string, arguments ...string) (execshell.ExecutionResult, error) {
	if detector.commandExecutor == nil {
		return execshell.ExecutionResult{}, errors.New(commandExecutorMissingMessageConstant)
	}

	argv := append([]string{gitCommandNameConstant}, arguments...)
	return detector.commandExecutor.ExecuteArgv(executionContext, argv, execshell.CommandDetails{
		WorkingDirectory: workingDirectory,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentValueConstant,
		},
	})
}

// canonicalVersion returns the version with a leading "v" when it is valid semver, else "".
func canonicalVersion(candidate string) string {
	if len(candidate) == 0 {
		return ""
	}
	if !strings.HasPrefix(candidate, semverPrefixConstant) {
		candidate = semverPrefixConstant + candidate
	}
	if !semver.IsValid(candidate) {
		return ""
	}
	return candidate
}

type runtimeBuildInfoProvider struct{}

func (runtimeBuildInfoProvider) Read() (*debug.BuildInfo, bool) {
	return debug.ReadBuildInfo()
}
