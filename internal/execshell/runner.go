package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
)

// OSCommandRunner runs commands as child processes of the current process.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs the default process-backed runner.
func NewOSCommandRunner() OSCommandRunner {
	return OSCommandRunner{}
}

// Run starts the command, waits for it, and reports its output. A non-zero exit is
// returned as a result rather than an error.
func (OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	process := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	process.Dir = command.Details.WorkingDirectory
	process.Env = mergeEnvironment(os.Environ(), command.Details.EnvironmentVariables)
	if len(command.Details.StandardInput) > 0 {
		process.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	var standardOutput, standardError bytes.Buffer
	process.Stdout = &standardOutput
	process.Stderr = &standardError

	runError := process.Run()
	result := ExecutionResult{
		StandardOutput: standardOutput.String(),
		StandardError:  standardError.String(),
	}
	if runError == nil {
		return result, nil
	}

	var exitError *exec.ExitError
	if errors.As(runError, &exitError) && executionContext.Err() == nil {
		result.ExitCode = exitError.ExitCode()
		return result, nil
	}
	return ExecutionResult{}, runError
}

func mergeEnvironment(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	merged := append([]string(nil), base...)
	for _, key := range keys {
		merged = append(merged, key+"="+overrides[key])
	}
	return merged
}
