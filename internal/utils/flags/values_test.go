package flags

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/tyemirov/reactor/internal/utils"
)

func newExecutionCommand() *cobra.Command {
	command := &cobra.Command{Use: "run", RunE: func(*cobra.Command, []string) error { return nil }}
	BindExecutionFlags(command, ExecutionDefaults{}, DefaultExecutionFlagDefinitions())
	return command
}

func TestCollectExecutionFlagsReadsToggleAndProperties(t *testing.T) {
	testCases := []struct {
		name               string
		arguments          []string
		expectedContinue   bool
		expectedSet        bool
		expectedProperties []string
	}{
		{name: "defaults", arguments: nil, expectedContinue: false, expectedSet: false},
		{name: "bare toggle", arguments: []string{"--continue-on-failure"}, expectedContinue: true, expectedSet: true},
		{name: "spelled toggle", arguments: []string{"--continue-on-failure=no"}, expectedContinue: false, expectedSet: true},
		{name: "on toggle", arguments: []string{"--continue-on-failure=on"}, expectedContinue: true, expectedSet: true},
		{
			name:               "repeated properties",
			arguments:          []string{"-p", "dist_dir=out", "--property", "tags=a,b"},
			expectedProperties: []string{"dist_dir=out", "tags=a,b"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			command := newExecutionCommand()
			require.NoError(t, command.ParseFlags(testCase.arguments))

			executionFlags := CollectExecutionFlags(command)
			require.Equal(t, testCase.expectedContinue, executionFlags.ContinueOnFailure)
			require.Equal(t, testCase.expectedSet, executionFlags.ContinueOnFailureSet)
			if testCase.expectedProperties == nil {
				require.Empty(t, executionFlags.Properties)
			} else {
				require.Equal(t, testCase.expectedProperties, executionFlags.Properties)
			}
		})
	}
}

func TestToggleRejectsUnknownSpelling(t *testing.T) {
	command := newExecutionCommand()
	require.Error(t, command.ParseFlags([]string{"--continue-on-failure=maybe"}))
}

func TestResolveExecutionFlagsPrefersContext(t *testing.T) {
	command := newExecutionCommand()
	require.NoError(t, command.ParseFlags([]string{"--continue-on-failure"}))

	stored := utils.ExecutionFlags{Properties: []string{"a=1"}, PropertiesSet: true}
	command.SetContext(utils.NewCommandContextAccessor().WithExecutionFlags(context.Background(), stored))

	resolved, available := ResolveExecutionFlags(command)
	require.True(t, available)
	require.Equal(t, stored, resolved)
}

func TestFlagLookupReportsMissingFlags(t *testing.T) {
	command := &cobra.Command{Use: "bare"}

	_, _, err := BoolFlag(command, ContinueOnFailureFlagName)
	require.ErrorIs(t, err, ErrFlagNotDefined)

	_, available := ResolveExecutionFlags(command)
	require.False(t, available)
}

func TestBindBuildFileFlagUsesDefaults(t *testing.T) {
	command := &cobra.Command{Use: "plan"}
	values := BindBuildFileFlag(command, BuildFileFlagValues{FilePath: "build.yaml"}, BuildFileFlagDefinition{Enabled: true})
	require.Equal(t, "build.yaml", values.FilePath)

	require.NoError(t, command.ParseFlags([]string{"-f", "other.yaml"}))
	require.Equal(t, "other.yaml", values.FilePath)

	filePath, changed, err := StringFlag(command, BuildFileFlagName)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, "other.yaml", filePath)
}
