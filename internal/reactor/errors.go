package reactor

import (
	"errors"
	"fmt"
	"strings"
)

const (
	missingTaskGoalTemplateConstant         = "task %q not found (requested as goal)"
	missingTaskReferenceTemplateConstant    = "task %q not found (referenced as %s by %q)"
	missingTaskLookupTemplateConstant       = "task %q not found"
	duplicateTaskTemplateConstant           = "task %q is already registered"
	duplicateHookTemplateConstant           = "%s hook %q is already registered"
	circularDependencyTemplateConstant      = "circular task dependency detected: %s"
	circularDependencyPathSeparatorConstant = " -> "
	taskExecutionTemplateConstant           = "task %q failed: %v"
	hookExecutionTemplateConstant           = "%s hook %q failed: %v"
	undefinedPropertyTemplateConstant       = "property %q is not defined"
	propertyTypeMismatchTemplateConstant    = "property %q holds %s, not %s"
	invalidTaskNameMessageConstant          = "task name must not be empty"
	missingTaskBodyTemplateConstant         = "task %q has no body"
	noGoalsMessageConstant                  = "at least one goal must be requested"
	projectClosedMessageConstant            = "project run-context is closed"
	invalidPropertyNameMessageConstant      = "property name must not be empty"
	taskPanicTemplateConstant               = "panic: %v"
	missingHookFunctionTemplateConstant     = "%s hook %q has no function"
	invalidHookNameMessageConstant          = "hook name must not be empty"
	runCancelledTemplateConstant            = "run cancelled before task %q: %w"
)

var (
	// ErrMissingTask marks failures caused by a task name that is not registered.
	ErrMissingTask = errors.New("missing task")
	// ErrDuplicateTask marks registrations that reuse an existing name.
	ErrDuplicateTask = errors.New("duplicate task")
	// ErrCircularDependency marks task graphs that contain a cycle.
	ErrCircularDependency = errors.New("circular task dependency")
	// ErrTaskExecution marks failures raised from within a task body.
	ErrTaskExecution = errors.New("task execution failed")
	// ErrHookExecution marks failures raised by initializer or finalizer hooks.
	ErrHookExecution = errors.New("hook execution failed")
	// ErrUndefinedProperty marks run-context lookups of absent properties.
	ErrUndefinedProperty = errors.New("undefined property")
	// ErrPropertyType marks run-context lookups whose stored value has another kind.
	ErrPropertyType = errors.New("property type mismatch")
	// ErrInvalidTaskName indicates an empty or blank task name.
	ErrInvalidTaskName = errors.New(invalidTaskNameMessageConstant)
	// ErrNoGoals indicates a run was requested without any goal.
	ErrNoGoals = errors.New(noGoalsMessageConstant)
	// ErrProjectClosed indicates a write to a run-context after its run ended.
	ErrProjectClosed = errors.New(projectClosedMessageConstant)
	// ErrInvalidPropertyName indicates an empty property name.
	ErrInvalidPropertyName = errors.New(invalidPropertyNameMessageConstant)
)

// Relation names the declaration through which one task references another.
type Relation string

// Supported relations.
const (
	RelationGoal       Relation = "goal"
	RelationDepends    Relation = "depends"
	RelationDependents Relation = "dependents"
	RelationBefore     Relation = "before"
	RelationAfter      Relation = "after"
)

// MissingTaskError reports a reference to a task name absent from the registry.
type MissingTaskError struct {
	Name     string
	Referrer string
	Relation Relation
}

// Error implements the error interface.
func (missingError MissingTaskError) Error() string {
	switch {
	case missingError.Relation == RelationGoal:
		return fmt.Sprintf(missingTaskGoalTemplateConstant, missingError.Name)
	case len(missingError.Referrer) > 0:
		return fmt.Sprintf(missingTaskReferenceTemplateConstant, missingError.Name, missingError.Relation, missingError.Referrer)
	default:
		return fmt.Sprintf(missingTaskLookupTemplateConstant, missingError.Name)
	}
}

// Is reports whether the target is ErrMissingTask.
func (missingError MissingTaskError) Is(target error) bool {
	return target == ErrMissingTask
}

// DuplicateTaskError reports a second registration of the same task name.
type DuplicateTaskError struct {
	Name string
}

// Error implements the error interface.
func (duplicateError DuplicateTaskError) Error() string {
	return fmt.Sprintf(duplicateTaskTemplateConstant, duplicateError.Name)
}

// Is reports whether the target is ErrDuplicateTask.
func (duplicateError DuplicateTaskError) Is(target error) bool {
	return target == ErrDuplicateTask
}

// DuplicateHookError reports a second registration of the same hook name within a phase.
type DuplicateHookError struct {
	Phase HookPhase
	Name  string
}

// Error implements the error interface.
func (duplicateError DuplicateHookError) Error() string {
	return fmt.Sprintf(duplicateHookTemplateConstant, duplicateError.Phase, duplicateError.Name)
}

// Is reports whether the target is ErrDuplicateTask.
func (duplicateError DuplicateHookError) Is(target error) bool {
	return target == ErrDuplicateTask
}

// CircularDependencyError carries the ordered cycle path; the first and last entries are the same task.
type CircularDependencyError struct {
	Path []string
}

// Error implements the error interface.
func (cycleError CircularDependencyError) Error() string {
	return fmt.Sprintf(circularDependencyTemplateConstant, strings.Join(cycleError.Path, circularDependencyPathSeparatorConstant))
}

// Is reports whether the target is ErrCircularDependency.
func (cycleError CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}

// TaskExecutionError wraps a failure raised from within a task body.
type TaskExecutionError struct {
	TaskName string
	Cause    error
}

// Error implements the error interface.
func (executionError TaskExecutionError) Error() string {
	return fmt.Sprintf(taskExecutionTemplateConstant, executionError.TaskName, executionError.Cause)
}

// Unwrap exposes the underlying failure.
func (executionError TaskExecutionError) Unwrap() error {
	return executionError.Cause
}

// Is reports whether the target is ErrTaskExecution.
func (executionError TaskExecutionError) Is(target error) bool {
	return target == ErrTaskExecution
}

// HookExecutionError wraps a failure raised by an initializer or finalizer.
type HookExecutionError struct {
	Phase    HookPhase
	HookName string
	Cause    error
}

// Error implements the error interface.
func (hookError HookExecutionError) Error() string {
	return fmt.Sprintf(hookExecutionTemplateConstant, hookError.Phase, hookError.HookName, hookError.Cause)
}

// Unwrap exposes the underlying failure.
func (hookError HookExecutionError) Unwrap() error {
	return hookError.Cause
}

// Is reports whether the target is ErrHookExecution.
func (hookError HookExecutionError) Is(target error) bool {
	return target == ErrHookExecution
}

// UndefinedPropertyError reports a lookup of a property that was never set.
type UndefinedPropertyError struct {
	Name string
}

// Error implements the error interface.
func (undefinedError UndefinedPropertyError) Error() string {
	return fmt.Sprintf(undefinedPropertyTemplateConstant, undefinedError.Name)
}

// Is reports whether the target is ErrUndefinedProperty.
func (undefinedError UndefinedPropertyError) Is(target error) bool {
	return target == ErrUndefinedProperty
}

// PropertyTypeError reports a typed lookup against a value of another kind.
type PropertyTypeError struct {
	Name     string
	Expected ValueKind
	Actual   ValueKind
}

// Error implements the error interface.
func (typeError PropertyTypeError) Error() string {
	return fmt.Sprintf(propertyTypeMismatchTemplateConstant, typeError.Name, typeError.Actual, typeError.Expected)
}

// Is reports whether the target is ErrPropertyType.
func (typeError PropertyTypeError) Is(target error) bool {
	return target == ErrPropertyType
}
