package build

import "strings"

const defaultBuildFileNameConstant = "build.yaml"

// CommandConfiguration captures build defaults read from the application configuration.
type CommandConfiguration struct {
	BuildFile         string         `mapstructure:"file"`
	Properties        map[string]any `mapstructure:"properties"`
	ContinueOnFailure bool           `mapstructure:"continue_on_failure"`
}

// DefaultCommandConfiguration returns the defaults used when no configuration is provided.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{BuildFile: defaultBuildFileNameConstant}
}

// Sanitize trims the build file path and copies the property map.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := CommandConfiguration{
		BuildFile:         strings.TrimSpace(configuration.BuildFile),
		ContinueOnFailure: configuration.ContinueOnFailure,
	}
	if len(sanitized.BuildFile) == 0 {
		sanitized.BuildFile = defaultBuildFileNameConstant
	}
	if len(configuration.Properties) > 0 {
		sanitized.Properties = make(map[string]any, len(configuration.Properties))
		for propertyName, propertyValue := range configuration.Properties {
			sanitized.Properties[propertyName] = propertyValue
		}
	}
	return sanitized
}
