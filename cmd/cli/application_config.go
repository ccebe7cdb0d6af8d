package cli

import (
	_ "embed"

	buildcmd "github.com/tyemirov/reactor/cmd/cli/build"
)

//go:embed default_config.yaml
var embeddedDefaultConfiguration []byte

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Build  buildcmd.CommandConfiguration  `mapstructure:"build"`
}

// ApplicationCommonConfiguration stores logging defaults shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// EmbeddedDefaultConfiguration returns the configuration compiled into the binary and its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return append([]byte(nil), embeddedDefaultConfiguration...), configurationTypeConstant
}
