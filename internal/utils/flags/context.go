package flags

import "github.com/spf13/cobra"

const (
	// BuildFileFlagName exposes the shared build file flag name.
	BuildFileFlagName = "file"
	// BuildFileFlagShorthand provides the shorthand for the build file flag.
	BuildFileFlagShorthand = "f"
	// BuildFileFlagUsage describes the shared build file flag purpose.
	BuildFileFlagUsage = "Build file describing tasks (YAML or JSON)"
	// PropertyFlagName exposes the shared property override flag name.
	PropertyFlagName = "property"
	// PropertyFlagShorthand provides the shorthand for the property flag.
	PropertyFlagShorthand = "p"
	// PropertyFlagUsage describes the shared property flag purpose.
	PropertyFlagUsage = "Run-context property as key=value (repeatable)"
	// ContinueOnFailureFlagName exposes the shared continue-on-failure flag name.
	ContinueOnFailureFlagName = "continue-on-failure"
	// ContinueOnFailureFlagUsage describes the continue-on-failure flag purpose.
	ContinueOnFailureFlagUsage = "Keep running tasks that do not depend on a failed task"
)

// BuildFileFlagDefinition captures configuration for the build file flag.
type BuildFileFlagDefinition struct {
	Name       string
	Usage      string
	Enabled    bool
	Persistent bool
}

// BuildFileFlagValues stores the build file flag value.
type BuildFileFlagValues struct {
	FilePath string
}

// BindBuildFileFlag attaches the build file flag to the provided command.
func BindBuildFileFlag(command *cobra.Command, defaults BuildFileFlagValues, definition BuildFileFlagDefinition) *BuildFileFlagValues {
	values := defaults
	if command == nil {
		return &values
	}
	if !definition.Enabled {
		return &values
	}
	flagName := definition.Name
	if len(flagName) == 0 {
		flagName = BuildFileFlagName
	}
	flagUsage := definition.Usage
	if len(flagUsage) == 0 {
		flagUsage = BuildFileFlagUsage
	}

	targetSet := command.PersistentFlags()
	if !definition.Persistent {
		targetSet = command.Flags()
	}

	if targetSet.Lookup(flagName) == nil {
		shorthand := ""
		if flagName == BuildFileFlagName {
			shorthand = BuildFileFlagShorthand
		}
		targetSet.StringVarP(&values.FilePath, flagName, shorthand, values.FilePath, flagUsage)
	}

	if definition.Persistent {
		if command.Flags().Lookup(flagName) == nil {
			if persistentFlag := targetSet.Lookup(flagName); persistentFlag != nil {
				command.Flags().AddFlag(persistentFlag)
			}
		}
	}
	return &values
}
