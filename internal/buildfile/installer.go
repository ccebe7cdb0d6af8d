package buildfile

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tyemirov/reactor/internal/execshell"
	"github.com/tyemirov/reactor/internal/reactor"
)

const (
	unknownPluginTemplateConstant      = "build file references unknown plugin %q"
	missingExecutorTemplateConstant    = "task %q runs a command but no shell executor is configured"
	setPropertyErrorTemplateConstant   = "task %q could not set property %q: %w"
	taskRegistrationTemplateConstant   = "register task %q: %w"
	hookRegistrationTemplateConstant   = "register %s %q: %w"
	pluginRegistrationTemplateConstant = "register plugin %q: %w"
	propertyReferencePrefixConstant    = "${"
	escapedReferencePrefixConstant     = "$${"
)

var propertyReferencePattern = regexp.MustCompile(`\$\$\{|\$\{[^{}]*\}`)

// PluginRegistrar contributes tasks to a registry.
type PluginRegistrar interface {
	Register(registry *reactor.Registry) error
}

// Installer turns a parsed build file into registry entries.
type Installer struct {
	Executor *execshell.ShellExecutor
	Plugins  map[string]PluginRegistrar
}

// Install registers plugins first, then tasks in file order, then hooks.
func (installer Installer) Install(configuration Configuration, registry *reactor.Registry) error {
	for _, pluginName := range configuration.Plugins {
		plugin, known := installer.Plugins[pluginName]
		if !known {
			return fmt.Errorf(unknownPluginTemplateConstant, pluginName)
		}
		if registrationError := plugin.Register(registry); registrationError != nil {
			return fmt.Errorf(pluginRegistrationTemplateConstant, pluginName, registrationError)
		}
	}

	for _, task := range configuration.Tasks {
		definition := reactor.TaskDefinition{
			Name:        task.Name,
			Description: task.Description,
			Depends:     task.Depends,
			Dependents:  task.Dependents,
			Before:      task.Before,
			After:       task.After,
			Body:        installer.taskBody(task),
		}
		if registrationError := registry.Register(definition); registrationError != nil {
			return fmt.Errorf(taskRegistrationTemplateConstant, task.Name, registrationError)
		}
	}

	for _, hook := range configuration.Initializers {
		if registrationError := registry.RegisterInitializer(hook.Name, reactor.HookFunc(installer.commandBody(hook.Name, hook.Run, hook.WorkingDirectory, hook.Environment))); registrationError != nil {
			return fmt.Errorf(hookRegistrationTemplateConstant, reactor.HookPhaseInitializer, hook.Name, registrationError)
		}
	}
	for _, hook := range configuration.Finalizers {
		if registrationError := registry.RegisterFinalizer(hook.Name, reactor.HookFunc(installer.commandBody(hook.Name, hook.Run, hook.WorkingDirectory, hook.Environment))); registrationError != nil {
			return fmt.Errorf(hookRegistrationTemplateConstant, reactor.HookPhaseFinalizer, hook.Name, registrationError)
		}
	}
	return nil
}

func (installer Installer) taskBody(task TaskConfiguration) reactor.TaskBody {
	runCommand := installer.commandBody(task.Name, task.Run, task.WorkingDirectory, task.Environment)
	return func(ctx context.Context, project *reactor.Project) error {
		if commandError := runCommand(ctx, project); commandError != nil {
			return commandError
		}
		for _, propertyName := range sortedKeys(task.Set) {
			rawValue := task.Set[propertyName]
			value := reactor.ValueOf(rawValue)
			if text, isText := rawValue.(string); isText {
				expanded, expansionError := ExpandProperties(text, project)
				if expansionError != nil {
					return expansionError
				}
				value = reactor.StringValue(expanded)
			}
			if setError := project.Set(propertyName, value); setError != nil {
				return fmt.Errorf(setPropertyErrorTemplateConstant, task.Name, propertyName, setError)
			}
		}
		return nil
	}
}

func (installer Installer) commandBody(name string, run []string, workingDirectory string, environment map[string]string) reactor.TaskBody {
	return func(ctx context.Context, project *reactor.Project) error {
		if len(run) == 0 {
			return nil
		}
		if installer.Executor == nil {
			return fmt.Errorf(missingExecutorTemplateConstant, name)
		}

		argv := make([]string, 0, len(run))
		for _, argument := range run {
			expanded, expansionError := ExpandProperties(argument, project)
			if expansionError != nil {
				return expansionError
			}
			argv = append(argv, expanded)
		}

		_, executionError := installer.Executor.ExecuteArgv(ctx, argv, execshell.CommandDetails{
			WorkingDirectory:     project.ExpandPath(workingDirectory),
			EnvironmentVariables: environment,
		})
		return executionError
	}
}

// ExpandProperties replaces ${name} references with run-context property values. Other $ text,
// such as shell variables, is left untouched and $${ yields a literal ${. A reference to an
// undefined property fails with reactor.UndefinedPropertyError.
func ExpandProperties(text string, project *reactor.Project) (string, error) {
	if !strings.Contains(text, propertyReferencePrefixConstant) {
		return text, nil
	}
	var missingError error
	expanded := propertyReferencePattern.ReplaceAllStringFunc(text, func(reference string) string {
		if reference == escapedReferencePrefixConstant {
			return propertyReferencePrefixConstant
		}
		propertyName := strings.TrimSpace(reference[len(propertyReferencePrefixConstant) : len(reference)-1])
		value, lookupError := project.Get(propertyName)
		if lookupError != nil {
			if missingError == nil {
				missingError = lookupError
			}
			return reference
		}
		return value.String()
	})
	if missingError != nil {
		return "", missingError
	}
	return expanded, nil
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
