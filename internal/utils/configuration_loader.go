package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
	configurationFileReadErrorTemplateConstant      = "failed to read configuration file %s: %w"
	configurationSearchErrorTemplateConstant        = "failed to read configuration: %w"
	configurationDecodeErrorTemplateConstant        = "failed to decode configuration: %w"
	environmentKeySeparatorConstant                 = "_"
	configurationKeySeparatorConstant               = "."
	listDecodeSeparatorConstant                     = ","
)

// LoadedConfiguration reports where configuration values came from.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// ConfigurationLoader layers defaults, embedded configuration, a configuration file, and
// environment overrides, in increasing precedence.
type ConfigurationLoader struct {
	configurationName     string
	configurationType     string
	environmentPrefix     string
	searchPaths           []string
	embeddedConfiguration []byte
	embeddedType          string
}

// NewConfigurationLoader creates a loader for files named configurationName inside searchPaths.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       append([]string(nil), searchPaths...),
	}
}

// SetEmbeddedConfiguration registers configuration compiled into the binary.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	loader.embeddedConfiguration = append([]byte(nil), configurationData...)
	loader.embeddedType = configurationType
}

// LoadConfiguration decodes the layered configuration into target. An explicit configuration
// file path must exist; search paths are optional and the first match wins.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	for key, value := range defaultValues {
		viperInstance.SetDefault(key, value)
	}

	if len(loader.embeddedConfiguration) > 0 {
		embeddedType := loader.embeddedType
		if len(embeddedType) == 0 {
			embeddedType = loader.configurationType
		}
		viperInstance.SetConfigType(embeddedType)
		if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration)); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
		}
	}

	metadata := LoadedConfiguration{}
	trimmedFilePath := strings.TrimSpace(configurationFilePath)
	if len(trimmedFilePath) > 0 {
		viperInstance.SetConfigFile(trimmedFilePath)
		if readError := viperInstance.MergeInConfig(); readError != nil {
			return LoadedConfiguration{}, fmt.Errorf(configurationFileReadErrorTemplateConstant, trimmedFilePath, readError)
		}
		metadata.ConfigFileUsed = viperInstance.ConfigFileUsed()
	} else if len(loader.searchPaths) > 0 {
		viperInstance.SetConfigName(loader.configurationName)
		viperInstance.SetConfigType(loader.configurationType)
		for _, searchPath := range loader.searchPaths {
			if trimmedSearchPath := strings.TrimSpace(searchPath); len(trimmedSearchPath) > 0 {
				viperInstance.AddConfigPath(trimmedSearchPath)
			}
		}
		readError := viperInstance.MergeInConfig()
		var notFoundError viper.ConfigFileNotFoundError
		switch {
		case readError == nil:
			metadata.ConfigFileUsed = viperInstance.ConfigFileUsed()
		case errors.As(readError, &notFoundError):
		default:
			return LoadedConfiguration{}, fmt.Errorf(configurationSearchErrorTemplateConstant, readError)
		}
	}

	if len(loader.environmentPrefix) > 0 {
		viperInstance.SetEnvPrefix(loader.environmentPrefix)
	}
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	viperInstance.AutomaticEnv()

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(listDecodeSeparatorConstant),
	))
	if decodeError := viperInstance.Unmarshal(target, decodeHook); decodeError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationDecodeErrorTemplateConstant, decodeError)
	}

	return metadata, nil
}
