package build

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tyemirov/reactor/internal/reactor"
	flagutils "github.com/tyemirov/reactor/internal/utils/flags"
)

const (
	tasksCommandUseConstant              = "tasks"
	tasksCommandShortDescriptionConstant = "List tasks declared by a build file"
	tasksLineTemplate                    = "%-*s  %s"
	tasksRelationTemplate                = "%s: %s"
	tasksRelationSeparator               = "; "
	tasksHooksTemplate                   = "%s: %s\n"
	tasksDependsLabel                    = "depends"
	tasksDependentsLabel                 = "dependents"
	tasksBeforeLabel                     = "before"
	tasksAfterLabel                      = "after"
	tasksInitializersLabel               = "initializers"
	tasksFinalizersLabel                 = "finalizers"
)

// BuildTasksCommand constructs the tasks command.
func (builder *CommandBuilder) BuildTasksCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   tasksCommandUseConstant,
		Short: tasksCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.tasks,
	}

	flagutils.BindBuildFileFlag(command, flagutils.BuildFileFlagValues{}, flagutils.BuildFileFlagDefinition{Enabled: true})

	return command, nil
}

func (builder *CommandBuilder) tasks(command *cobra.Command, _ []string) error {
	loaded, loadError := builder.loadWorkspace(command)
	if loadError != nil {
		return loadError
	}
	writeTaskListing(command.OutOrStdout(), loaded.engine.Registry())
	return nil
}

func writeTaskListing(output io.Writer, registry *reactor.Registry) {
	definitions := registry.Tasks()
	nameWidth := 0
	for _, definition := range definitions {
		if len(definition.Name) > nameWidth {
			nameWidth = len(definition.Name)
		}
	}

	for _, definition := range definitions {
		details := make([]string, 0, 5)
		if len(definition.Description) > 0 {
			details = append(details, definition.Description)
		}
		details = appendRelation(details, tasksDependsLabel, definition.Depends...)
		details = appendRelation(details, tasksDependentsLabel, definition.Dependents...)
		details = appendRelation(details, tasksBeforeLabel, definition.Before)
		details = appendRelation(details, tasksAfterLabel, definition.After)
		line := fmt.Sprintf(tasksLineTemplate, nameWidth, definition.Name, strings.Join(details, tasksRelationSeparator))
		fmt.Fprintln(output, strings.TrimRight(line, " "))
	}

	writeHooks(output, tasksInitializersLabel, registry.Initializers())
	writeHooks(output, tasksFinalizersLabel, registry.Finalizers())
}

func appendRelation(details []string, label string, names ...string) []string {
	present := make([]string, 0, len(names))
	for _, name := range names {
		if len(name) > 0 {
			present = append(present, name)
		}
	}
	if len(present) == 0 {
		return details
	}
	return append(details, fmt.Sprintf(tasksRelationTemplate, label, strings.Join(present, summaryGoalSeparator)))
}

func writeHooks(output io.Writer, label string, hooks []reactor.Hook) {
	if len(hooks) == 0 {
		return
	}
	names := make([]string, 0, len(hooks))
	for _, hook := range hooks {
		names = append(names, hook.Name)
	}
	fmt.Fprintf(output, tasksHooksTemplate, label, strings.Join(names, summaryGoalSeparator))
}
