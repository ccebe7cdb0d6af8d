package build

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tyemirov/reactor/internal/reactor"
	flagutils "github.com/tyemirov/reactor/internal/utils/flags"
)

const (
	runCommandUseConstant              = "run [goals...]"
	runCommandShortDescriptionConstant = "Run goals from a build file"
	runCommandLongDescriptionConstant  = "run resolves the requested goals (or the build file default_goals) into a plan and executes every task once, in order."
	runCommandExampleConstant          = "reactor run package\n  reactor run -f ci.yaml test lint -p dist_dir=out --continue-on-failure"
	buildFailedErrorTemplate           = "build failed: %w"
	summaryPlanTemplate                = "Plan: %s\n"
	summaryTaskTemplate                = "  %-*s  %-9s  %s\n"
	summaryTaskErrorTemplate           = "  %-*s  %s\n"
	summaryFooterTemplate              = "%s: %d succeeded, %d failed, %d skipped in %s\n"
	summarySucceededLabel              = "BUILD SUCCEEDED"
	summaryFailedLabel                 = "BUILD FAILED"
	summaryGoalSeparator               = ", "
	summaryDurationPrecision           = time.Millisecond
)

// BuildRunCommand constructs the run command.
func (builder *CommandBuilder) BuildRunCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     runCommandUseConstant,
		Short:   runCommandShortDescriptionConstant,
		Long:    runCommandLongDescriptionConstant,
		Example: runCommandExampleConstant,
		RunE:    builder.run,
	}

	flagutils.BindBuildFileFlag(command, flagutils.BuildFileFlagValues{}, flagutils.BuildFileFlagDefinition{Enabled: true})
	flagutils.BindExecutionFlags(command, flagutils.ExecutionDefaults{}, flagutils.DefaultExecutionFlagDefinitions())

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	loaded, loadError := builder.loadWorkspace(command)
	if loadError != nil {
		return loadError
	}

	goals, goalsError := resolveGoals(arguments, loaded.buildFile)
	if goalsError != nil {
		return goalsError
	}

	configuration := builder.resolveConfiguration()
	executionFlags, _ := flagutils.ResolveExecutionFlags(command)
	overrides, overridesError := ParsePropertyAssignments(executionFlags.Properties)
	if overridesError != nil {
		return overridesError
	}

	continueOnFailure := configuration.ContinueOnFailure
	if executionFlags.ContinueOnFailureSet {
		continueOnFailure = executionFlags.ContinueOnFailure
	}

	outcome, buildError := loaded.engine.Build(command.Context(), goals, reactor.RunOptions{
		ProjectName:       loaded.projectName(),
		BasePath:          loaded.baseDirectory,
		Properties:        mergeProperties(configuration.Properties, loaded.buildFile.PropertyValues(), overrides),
		ContinueOnFailure: continueOnFailure,
	})

	if outcome.Plan.Len() > 0 {
		writeSummary(command.OutOrStdout(), outcome, buildError == nil)
	}
	if buildError != nil {
		return fmt.Errorf(buildFailedErrorTemplate, buildError)
	}
	return nil
}

// writeSummary prints one line per planned task followed by a totals line.
func writeSummary(output io.Writer, outcome reactor.RunOutcome, succeeded bool) {
	nameWidth := 0
	for _, taskName := range outcome.Plan.Tasks {
		if len(taskName) > nameWidth {
			nameWidth = len(taskName)
		}
	}

	fmt.Fprintf(output, summaryPlanTemplate, strings.Join(outcome.Plan.Tasks, summaryGoalSeparator))
	for _, result := range outcome.Results {
		fmt.Fprintf(output, summaryTaskTemplate, nameWidth, result.Name, result.State, result.Duration.Round(summaryDurationPrecision))
		if result.Error != nil {
			fmt.Fprintf(output, summaryTaskErrorTemplate, nameWidth, "", result.Error)
		}
	}

	label := summarySucceededLabel
	if !succeeded {
		label = summaryFailedLabel
	}
	fmt.Fprintf(
		output,
		summaryFooterTemplate,
		label,
		outcome.Count(reactor.TaskStateSucceeded),
		outcome.Count(reactor.TaskStateFailed),
		outcome.Count(reactor.TaskStateSkipped),
		outcome.Duration.Round(summaryDurationPrecision),
	)
}
