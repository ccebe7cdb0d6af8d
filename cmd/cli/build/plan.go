package build

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tyemirov/reactor/internal/reactor"
	flagutils "github.com/tyemirov/reactor/internal/utils/flags"
)

const (
	planCommandUseConstant              = "plan [goals...]"
	planCommandShortDescriptionConstant = "Print the execution plan without running it"
	planCommandLongDescriptionConstant  = "plan resolves goals exactly like run, reports missing tasks and cycles, and prints the ordered task list."
	planFormatFlagNameConstant          = "format"
	planFormatFlagUsageConstant         = "Output format (text or yaml)"
	planFormatTextConstant              = "text"
	planFormatYAMLConstant              = "yaml"
	planUnsupportedFormatTemplate       = "unsupported plan format %q (use text or yaml)"
	planTextLineTemplate                = "%d. %s"
	planTextAfterTemplate               = " (after: %s)"
	planYAMLIndentConstant              = 2
)

type planDocument struct {
	Project string             `yaml:"project,omitempty"`
	Goals   []string           `yaml:"goals"`
	Tasks   []planDocumentTask `yaml:"tasks"`
}

type planDocumentTask struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	After       []string `yaml:"after,omitempty"`
}

// BuildPlanCommand constructs the plan command.
func (builder *CommandBuilder) BuildPlanCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   planCommandUseConstant,
		Short: planCommandShortDescriptionConstant,
		Long:  planCommandLongDescriptionConstant,
		RunE:  builder.plan,
	}

	flagutils.BindBuildFileFlag(command, flagutils.BuildFileFlagValues{}, flagutils.BuildFileFlagDefinition{Enabled: true})
	command.Flags().String(planFormatFlagNameConstant, planFormatTextConstant, planFormatFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) plan(command *cobra.Command, arguments []string) error {
	format, _, formatError := flagutils.StringFlag(command, planFormatFlagNameConstant)
	if formatError != nil {
		return formatError
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format != planFormatTextConstant && format != planFormatYAMLConstant {
		return fmt.Errorf(planUnsupportedFormatTemplate, format)
	}

	loaded, loadError := builder.loadWorkspace(command)
	if loadError != nil {
		return loadError
	}

	goals, goalsError := resolveGoals(arguments, loaded.buildFile)
	if goalsError != nil {
		return goalsError
	}

	executionPlan, planError := loaded.engine.PlanGoals(goals)
	if planError != nil {
		return planError
	}

	document := newPlanDocument(loaded, executionPlan)
	if format == planFormatYAMLConstant {
		return writePlanYAML(command.OutOrStdout(), document)
	}
	writePlanText(command.OutOrStdout(), document)
	return nil
}

func newPlanDocument(loaded workspace, executionPlan reactor.ExecutionPlan) planDocument {
	document := planDocument{
		Project: loaded.buildFile.Project.Name,
		Goals:   executionPlan.Goals,
		Tasks:   make([]planDocumentTask, 0, executionPlan.Len()),
	}
	for _, taskName := range executionPlan.Tasks {
		entry := planDocumentTask{Name: taskName, After: executionPlan.Prerequisites(taskName)}
		if definition, lookupError := loaded.engine.Registry().Lookup(taskName); lookupError == nil {
			entry.Description = definition.Description
		}
		document.Tasks = append(document.Tasks, entry)
	}
	return document
}

func writePlanText(output io.Writer, document planDocument) {
	for taskIndex, task := range document.Tasks {
		line := fmt.Sprintf(planTextLineTemplate, taskIndex+1, task.Name)
		if len(task.After) > 0 {
			line += fmt.Sprintf(planTextAfterTemplate, strings.Join(task.After, summaryGoalSeparator))
		}
		fmt.Fprintln(output, line)
	}
}

func writePlanYAML(output io.Writer, document planDocument) error {
	encoder := yaml.NewEncoder(output)
	encoder.SetIndent(planYAMLIndentConstant)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}
