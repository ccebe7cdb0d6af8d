package reactor

import (
	"context"
	"fmt"
	"strings"
)

// TaskBody performs the build action of a task against the shared run-context.
type TaskBody func(ctx context.Context, project *Project) error

// HookFunc is an initializer or finalizer callback.
type HookFunc func(ctx context.Context, project *Project) error

// HookPhase identifies when a hook runs relative to the plan.
type HookPhase string

// Supported hook phases.
const (
	HookPhaseInitializer HookPhase = "initializer"
	HookPhaseFinalizer   HookPhase = "finalizer"
)

// TaskDefinition describes one registered task.
type TaskDefinition struct {
	Name        string
	Description string
	Body        TaskBody
	Depends     []string
	Dependents  []string
	Before      string
	After       string
}

// Hook is a named initializer or finalizer.
type Hook struct {
	Phase HookPhase
	Name  string
	Func  HookFunc
}

type registeredTask struct {
	definition TaskDefinition
	index      int
}

// Registry maps unique task names to their definitions and keeps registration order.
type Registry struct {
	tasks        map[string]registeredTask
	order        []string
	initializers []Hook
	finalizers   []Hook
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]registeredTask)}
}

// Register stores a task definition. Names are trimmed and must be unique.
func (registry *Registry) Register(definition TaskDefinition) error {
	name := strings.TrimSpace(definition.Name)
	if len(name) == 0 {
		return ErrInvalidTaskName
	}
	if _, exists := registry.tasks[name]; exists {
		return DuplicateTaskError{Name: name}
	}
	if definition.Body == nil {
		return fmt.Errorf(missingTaskBodyTemplateConstant, name)
	}

	stored := TaskDefinition{
		Name:        name,
		Description: strings.TrimSpace(definition.Description),
		Body:        definition.Body,
		Depends:     sanitizeNames(definition.Depends),
		Dependents:  sanitizeNames(definition.Dependents),
		Before:      strings.TrimSpace(definition.Before),
		After:       strings.TrimSpace(definition.After),
	}

	registry.tasks[name] = registeredTask{definition: stored, index: len(registry.order)}
	registry.order = append(registry.order, name)
	return nil
}

// Lookup returns the definition registered under name.
func (registry *Registry) Lookup(name string) (TaskDefinition, error) {
	entry, exists := registry.tasks[strings.TrimSpace(name)]
	if !exists {
		return TaskDefinition{}, MissingTaskError{Name: name}
	}
	return copyDefinition(entry.definition), nil
}

// Has reports whether a task is registered under name.
func (registry *Registry) Has(name string) bool {
	_, exists := registry.tasks[strings.TrimSpace(name)]
	return exists
}

// Tasks returns all definitions in registration order.
func (registry *Registry) Tasks() []TaskDefinition {
	definitions := make([]TaskDefinition, 0, len(registry.order))
	for _, name := range registry.order {
		definitions = append(definitions, copyDefinition(registry.tasks[name].definition))
	}
	return definitions
}

// Names returns task names in registration order.
func (registry *Registry) Names() []string {
	names := make([]string, len(registry.order))
	copy(names, registry.order)
	return names
}

// RegisterInitializer records a hook that runs once before the first task.
func (registry *Registry) RegisterInitializer(name string, hook HookFunc) error {
	updated, registrationError := appendHook(registry.initializers, HookPhaseInitializer, name, hook)
	if registrationError != nil {
		return registrationError
	}
	registry.initializers = updated
	return nil
}

// RegisterFinalizer records a hook that runs once after the plan, even on failure.
func (registry *Registry) RegisterFinalizer(name string, hook HookFunc) error {
	updated, registrationError := appendHook(registry.finalizers, HookPhaseFinalizer, name, hook)
	if registrationError != nil {
		return registrationError
	}
	registry.finalizers = updated
	return nil
}

// Initializers returns initializer hooks in registration order.
func (registry *Registry) Initializers() []Hook {
	return append([]Hook(nil), registry.initializers...)
}

// Finalizers returns finalizer hooks in registration order.
func (registry *Registry) Finalizers() []Hook {
	return append([]Hook(nil), registry.finalizers...)
}

func (registry *Registry) registrationIndex(name string) int {
	return registry.tasks[name].index
}

func (registry *Registry) definition(name string) (TaskDefinition, bool) {
	entry, exists := registry.tasks[name]
	return entry.definition, exists
}

func appendHook(hooks []Hook, phase HookPhase, name string, hook HookFunc) ([]Hook, error) {
	trimmedName := strings.TrimSpace(name)
	if len(trimmedName) == 0 {
		return nil, fmt.Errorf("%s: %s", phase, invalidHookNameMessageConstant)
	}
	if hook == nil {
		return nil, fmt.Errorf(missingHookFunctionTemplateConstant, phase, trimmedName)
	}
	for _, existing := range hooks {
		if existing.Name == trimmedName {
			return nil, DuplicateHookError{Phase: phase, Name: trimmedName}
		}
	}
	return append(hooks, Hook{Phase: phase, Name: trimmedName, Func: hook}), nil
}

func sanitizeNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	sanitized := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, rawName := range names {
		name := strings.TrimSpace(rawName)
		if len(name) == 0 {
			continue
		}
		if _, duplicate := seen[name]; duplicate {
			continue
		}
		seen[name] = struct{}{}
		sanitized = append(sanitized, name)
	}
	return sanitized
}

func copyDefinition(definition TaskDefinition) TaskDefinition {
	copied := definition
	copied.Depends = append([]string(nil), definition.Depends...)
	copied.Dependents = append([]string(nil), definition.Dependents...)
	return copied
}
