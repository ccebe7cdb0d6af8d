// Package buildfile loads declarative build files and registers their tasks with a reactor.
package buildfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tyemirov/reactor/internal/reactor"
)

const (
	configurationLoadErrorTemplateConstant        = "failed to load build file: %w"
	configurationParseErrorTemplateConstant       = "failed to parse build file: %w"
	configurationPathRequiredMessageConstant      = "build file path must be provided"
	configurationEmptyTasksMessageConstant        = "build file must define at least one task"
	configurationTaskNameMissingTemplateConstant  = "build file task #%d missing name"
	configurationHookNameMissingTemplateConstant  = "build file %s #%d missing name"
	configurationTasksSequenceMessageConstant     = "tasks block must be defined as a sequence of task entries"
	configurationPluginNameMissingMessageConstant = "build file plugin entry missing name"
	configurationInitializerSectionNameConstant   = "initializer"
	configurationFinalizerSectionNameConstant     = "finalizer"
)

// Configuration is the parsed form of a build file.
type Configuration struct {
	Project      ProjectConfiguration
	DefaultGoals []string
	Properties   map[string]any
	Tasks        []TaskConfiguration
	Initializers []HookConfiguration
	Finalizers   []HookConfiguration
	Plugins      []string
}

// ProjectConfiguration names the project a build file describes.
type ProjectConfiguration struct {
	Name string `yaml:"name" json:"name"`
}

// TaskConfiguration declares one task.
type TaskConfiguration struct {
	Name             string            `yaml:"name" json:"name"`
	Description      string            `yaml:"description" json:"description"`
	Depends          []string          `yaml:"depends" json:"depends"`
	Dependents       []string          `yaml:"dependents" json:"dependents"`
	Before           string            `yaml:"before" json:"before"`
	After            string            `yaml:"after" json:"after"`
	Run              []string          `yaml:"run" json:"run"`
	WorkingDirectory string            `yaml:"working_directory" json:"working_directory"`
	Environment      map[string]string `yaml:"environment" json:"environment"`
	Set              map[string]any    `yaml:"set" json:"set"`
}

// HookConfiguration declares an initializer or finalizer command.
type HookConfiguration struct {
	Name             string            `yaml:"name" json:"name"`
	Run              []string          `yaml:"run" json:"run"`
	WorkingDirectory string            `yaml:"working_directory" json:"working_directory"`
	Environment      map[string]string `yaml:"environment" json:"environment"`
}

type buildFile struct {
	Project      ProjectConfiguration `yaml:"project" json:"project"`
	DefaultGoals []string             `yaml:"default_goals" json:"default_goals"`
	Properties   map[string]any       `yaml:"properties" json:"properties"`
	Tasks        []taskWrapper        `yaml:"tasks" json:"tasks"`
	Initializers []HookConfiguration  `yaml:"initializers" json:"initializers"`
	Finalizers   []HookConfiguration  `yaml:"finalizers" json:"finalizers"`
	Plugins      []string             `yaml:"plugins" json:"plugins"`
}

type taskWrapper struct {
	Task TaskConfiguration `yaml:"task" json:"task"`
}

// LoadConfiguration reads a build file from disk and validates it.
func LoadConfiguration(filePath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Configuration{}, errors.New(configurationPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(configurationLoadErrorTemplateConstant, readError)
	}
	return ParseConfiguration(contentBytes)
}

// ParseConfiguration decodes build file contents. JSON input is accepted since it is valid YAML.
func ParseConfiguration(contentBytes []byte) (Configuration, error) {
	if sequenceError := ensureTasksSequence(contentBytes); sequenceError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, sequenceError)
	}

	var parsedFile buildFile
	if unmarshalError := yaml.Unmarshal(contentBytes, &parsedFile); unmarshalError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, unmarshalError)
	}

	if len(parsedFile.Tasks) == 0 {
		return Configuration{}, errors.New(configurationEmptyTasksMessageConstant)
	}

	configuration := Configuration{
		Project:      ProjectConfiguration{Name: strings.TrimSpace(parsedFile.Project.Name)},
		DefaultGoals: trimNonEmpty(parsedFile.DefaultGoals),
		Properties:   parsedFile.Properties,
		Tasks:        make([]TaskConfiguration, 0, len(parsedFile.Tasks)),
	}

	for taskIndex := range parsedFile.Tasks {
		task := parsedFile.Tasks[taskIndex].Task
		task.Name = strings.TrimSpace(task.Name)
		if len(task.Name) == 0 {
			return Configuration{}, fmt.Errorf(configurationTaskNameMissingTemplateConstant, taskIndex+1)
		}
		task.Description = strings.TrimSpace(task.Description)
		configuration.Tasks = append(configuration.Tasks, task)
	}

	var hookError error
	if configuration.Initializers, hookError = normalizeHooks(parsedFile.Initializers, configurationInitializerSectionNameConstant); hookError != nil {
		return Configuration{}, hookError
	}
	if configuration.Finalizers, hookError = normalizeHooks(parsedFile.Finalizers, configurationFinalizerSectionNameConstant); hookError != nil {
		return Configuration{}, hookError
	}

	for _, pluginName := range parsedFile.Plugins {
		trimmedPlugin := strings.TrimSpace(pluginName)
		if len(trimmedPlugin) == 0 {
			return Configuration{}, errors.New(configurationPluginNameMissingMessageConstant)
		}
		configuration.Plugins = append(configuration.Plugins, trimmedPlugin)
	}

	return configuration, nil
}

// PropertyValues converts the declared properties into run-context values.
func (configuration Configuration) PropertyValues() map[string]reactor.Value {
	values := make(map[string]reactor.Value, len(configuration.Properties))
	for name, raw := range configuration.Properties {
		values[name] = reactor.ValueOf(raw)
	}
	return values
}

func normalizeHooks(hooks []HookConfiguration, section string) ([]HookConfiguration, error) {
	normalized := make([]HookConfiguration, 0, len(hooks))
	for hookIndex := range hooks {
		hook := hooks[hookIndex]
		hook.Name = strings.TrimSpace(hook.Name)
		if len(hook.Name) == 0 {
			return nil, fmt.Errorf(configurationHookNameMissingTemplateConstant, section, hookIndex+1)
		}
		normalized = append(normalized, hook)
	}
	return normalized, nil
}

func ensureTasksSequence(contentBytes []byte) error {
	var tasksWrapper struct {
		Tasks yaml.Node `yaml:"tasks" json:"tasks"`
	}

	if unmarshalError := yaml.Unmarshal(contentBytes, &tasksWrapper); unmarshalError != nil {
		return unmarshalError
	}

	if tasksWrapper.Tasks.Kind == 0 {
		return nil
	}

	switch tasksWrapper.Tasks.Kind {
	case yaml.SequenceNode:
		return nil
	default:
		return errors.New(configurationTasksSequenceMessageConstant)
	}
}

func trimNonEmpty(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, value := range values {
		if candidate := strings.TrimSpace(value); len(candidate) > 0 {
			trimmed = append(trimmed, candidate)
		}
	}
	return trimmed
}
