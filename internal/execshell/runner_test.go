package execshell_test

import (
	"context"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/reactor/internal/execshell"
)

func TestOSCommandRunnerReportsOutputAndExitCode(testInstance *testing.T) {
	if runtime.GOOS == "windows" {
		testInstance.Skip("requires a POSIX shell")
	}
	if _, lookupError := exec.LookPath("sh"); lookupError != nil {
		testInstance.Skip("sh not available")
	}

	runner := execshell.OSCommandRunner{}
	workingDirectory := testInstance.TempDir()

	result, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Name: "sh",
		Details: execshell.CommandDetails{
			Arguments:            []string{"-c", `printf "%s" "$REACTOR_TEST_VALUE"; printf "oops" 1>&2; exit 3`},
			WorkingDirectory:     workingDirectory,
			EnvironmentVariables: map[string]string{"REACTOR_TEST_VALUE": "hello"},
		},
	})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 3, result.ExitCode)
	require.Equal(testInstance, "hello", result.StandardOutput)
	require.Equal(testInstance, "oops", result.StandardError)
}

func TestOSCommandRunnerReturnsErrorForMissingExecutable(testInstance *testing.T) {
	runner := execshell.OSCommandRunner{}
	_, runError := runner.Run(context.Background(), execshell.ShellCommand{Name: "reactor-definitely-missing-binary"})
	require.Error(testInstance, runError)
}
