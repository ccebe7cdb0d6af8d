// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ExecutionDefaults describes default flag values shared across commands.
type ExecutionDefaults struct {
	ContinueOnFailure bool
}

// ExecutionFlagDefinition captures a single flag's configuration.
type ExecutionFlagDefinition struct {
	Name      string
	Usage     string
	Shorthand string
	Enabled   bool
}

// ExecutionFlagDefinitions groups execution flag definitions.
type ExecutionFlagDefinitions struct {
	ContinueOnFailure ExecutionFlagDefinition
	Property          ExecutionFlagDefinition
}

// BindExecutionFlags attaches standardized execution flags to the provided command using local scope.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, definitions ExecutionFlagDefinitions) {
	if command == nil {
		return
	}

	flagSet := command.Flags()

	bindToggleFlag(flagSet, definitions.ContinueOnFailure, defaults.ContinueOnFailure)
	if definitions.Property.Enabled && len(definitions.Property.Name) > 0 && flagSet.Lookup(definitions.Property.Name) == nil {
		flagSet.StringArrayP(definitions.Property.Name, definitions.Property.Shorthand, nil, definitions.Property.Usage)
	}
}

// DefaultExecutionFlagDefinitions enables every execution flag with its shared name.
func DefaultExecutionFlagDefinitions() ExecutionFlagDefinitions {
	return ExecutionFlagDefinitions{
		ContinueOnFailure: ExecutionFlagDefinition{Name: ContinueOnFailureFlagName, Usage: ContinueOnFailureFlagUsage, Enabled: true},
		Property:          ExecutionFlagDefinition{Name: PropertyFlagName, Usage: PropertyFlagUsage, Shorthand: PropertyFlagShorthand, Enabled: true},
	}
}

func bindToggleFlag(flagSet *pflag.FlagSet, definition ExecutionFlagDefinition, defaultValue bool) {
	if flagSet == nil {
		return
	}
	if !definition.Enabled {
		return
	}
	if len(definition.Name) == 0 {
		return
	}

	AddToggleFlag(flagSet, nil, definition.Name, definition.Shorthand, defaultValue, definition.Usage)
}
