// Package reactor resolves declared tasks and requested goals into one deterministic plan
// and executes it against a shared run-context.
package reactor

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	logMessagePlanComputed = "plan computed"
	logMessagePlanRejected = "plan rejected"
	logFieldGoals          = "goals"
	logFieldTasks          = "tasks"
)

// RunOptions configure one Build invocation.
type RunOptions struct {
	ProjectName       string
	BasePath          string
	Properties        map[string]Value
	ContinueOnFailure bool
}

// Reactor owns a task registry and turns goals into executed runs.
type Reactor struct {
	registry *Registry
	logger   *zap.Logger
}

// New creates a reactor with an empty registry.
func New(logger *zap.Logger) *Reactor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reactor{registry: NewRegistry(), logger: logger}
}

// Registry exposes the registration API.
func (reactor *Reactor) Registry() *Registry {
	return reactor.registry
}

// Register declares a task.
func (reactor *Reactor) Register(definition TaskDefinition) error {
	return reactor.registry.Register(definition)
}

// PlanGoals computes the execution plan for goals without running anything.
func (reactor *Reactor) PlanGoals(goals []string) (ExecutionPlan, error) {
	plan, planError := Plan(reactor.registry, goals)
	if planError != nil {
		reactor.logger.Debug(logMessagePlanRejected, zap.Strings(logFieldGoals, goals), zap.Error(planError))
		return ExecutionPlan{}, planError
	}
	reactor.logger.Debug(logMessagePlanComputed, zap.Strings(logFieldGoals, plan.Goals), zap.String(logFieldTasks, strings.Join(plan.Tasks, ",")))
	return plan, nil
}

// Build plans goals and executes the plan with a fresh run-context. Structural errors are
// returned before any task, initializer, or finalizer runs.
func (reactor *Reactor) Build(ctx context.Context, goals []string, options RunOptions) (RunOutcome, error) {
	plan, planError := reactor.PlanGoals(goals)
	if planError != nil {
		return RunOutcome{}, planError
	}

	project := NewProject(options.ProjectName, options.BasePath, options.Properties)
	executor := NewExecutor(reactor.registry, reactor.logger)
	return executor.Execute(ctx, plan, project, ExecutionOptions{ContinueOnFailure: options.ContinueOnFailure})
}
