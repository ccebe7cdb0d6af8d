package execshell

import (
	"fmt"
	"strings"
)

const (
	humanStartedTemplateConstant          = "Running %s"
	humanCompletedTemplateConstant        = "Completed %s"
	humanFailedTemplateConstant           = "%s failed with exit code %d"
	humanExecutionFailedTemplateConstant  = "%s failed: %v"
	humanWorkingDirectoryTemplateConstant = "%s (in %s)"
)

// CommandMessageFormatter renders human-readable lifecycle messages for console logging.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return fmt.Sprintf(humanStartedTemplateConstant, formatter.describe(command))
}

// BuildSuccessMessage describes a command that exited cleanly.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return fmt.Sprintf(humanCompletedTemplateConstant, formatter.describe(command))
}

// BuildFailureMessage describes a command that exited with a non-zero code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	message := fmt.Sprintf(humanFailedTemplateConstant, formatter.describe(command), result.ExitCode)
	if detail := leadingLines(strings.TrimSpace(result.StandardError), 1); len(detail) > 0 {
		message = fmt.Sprintf("%s: %s", message, detail[0])
	}
	return message
}

// BuildExecutionFailureMessage describes a command the runner could not execute.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, cause error) string {
	return fmt.Sprintf(humanExecutionFailedTemplateConstant, formatter.describe(command), cause)
}

func (formatter CommandMessageFormatter) describe(command ShellCommand) string {
	parts := append([]string{string(command.Name)}, command.Details.Arguments...)
	description := strings.Join(parts, " ")
	if workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory); len(workingDirectory) > 0 {
		description = fmt.Sprintf(humanWorkingDirectoryTemplateConstant, description, workingDirectory)
	}
	return description
}
