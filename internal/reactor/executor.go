package reactor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	logMessageInitializerStarted = "initializer started"
	logMessageInitializerFailed  = "initializer failed"
	logMessageFinalizerStarted   = "finalizer started"
	logMessageFinalizerFailed    = "finalizer failed"
	logMessageTaskStarted        = "task started"
	logMessageTaskFinished       = "task finished"
	logMessageTaskFailed         = "task failed"
	logMessageTaskSkipped        = "task skipped"
	logMessageRunCancelled       = "run cancelled"

	logFieldTask     = "task"
	logFieldHook     = "hook"
	logFieldState    = "state"
	logFieldDuration = "duration"
	logFieldCause    = "blocked_by"
)

// ExecutionOptions modify how a plan is walked.
type ExecutionOptions struct {
	// ContinueOnFailure keeps running tasks that do not depend on a failed task.
	ContinueOnFailure bool
}

// Executor walks an ExecutionPlan, invoking each task body exactly once.
type Executor struct {
	registry *Registry
	logger   *zap.Logger
	now      func() time.Time
}

// NewExecutor builds an executor over the registry. A nil logger disables logging.
func NewExecutor(registry *Registry, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{registry: registry, logger: logger, now: time.Now}
}

// Execute runs initializers, the planned tasks in order, and finalizers in reverse order.
// The returned error is the first task failure (or initializer failure, or cancellation)
// joined with any finalizer failures. The project is closed when Execute returns.
func (executor *Executor) Execute(ctx context.Context, plan ExecutionPlan, project *Project, options ExecutionOptions) (RunOutcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if project == nil {
		project = NewProject("", "", nil)
	}

	outcome := RunOutcome{StartTime: executor.now(), Plan: plan}
	for _, taskName := range plan.Tasks {
		if !executor.registry.Has(taskName) {
			project.close()
			return outcome, MissingTaskError{Name: taskName}
		}
	}
	run := newPlanRun(plan)

	var primaryError error
	if initializerError := executor.runInitializers(ctx, project); initializerError != nil {
		primaryError = initializerError
		run.skipRemaining(0)
	} else {
		primaryError = executor.runTasks(ctx, plan, project, options, run)
	}

	finalizerError := executor.runFinalizers(ctx, project)

	outcome.Results = run.results
	outcome.Properties = project.Snapshot()
	outcome.EndTime = executor.now()
	outcome.Duration = outcome.EndTime.Sub(outcome.StartTime)
	project.close()

	if finalizerError == nil {
		return outcome, primaryError
	}
	return outcome, errors.Join(primaryError, finalizerError)
}

func (executor *Executor) runTasks(ctx context.Context, plan ExecutionPlan, project *Project, options ExecutionOptions, run *planRun) error {
	var firstFailure error
	for taskIndex, taskName := range plan.Tasks {
		if run.results[taskIndex].State.Terminal() {
			continue
		}

		if contextError := ctx.Err(); contextError != nil {
			executor.logger.Warn(logMessageRunCancelled, zap.String(logFieldTask, taskName), zap.Error(contextError))
			run.skipRemaining(taskIndex)
			if firstFailure != nil {
				return firstFailure
			}
			return fmt.Errorf(runCancelledTemplateConstant, taskName, contextError)
		}

		if earlierIndex, executed := run.executed[taskName]; executed {
			run.results[taskIndex] = run.results[earlierIndex]
			continue
		}

		if blocker, blocked := run.blockedBy(plan, taskName); blocked {
			run.results[taskIndex].State = TaskStateSkipped
			run.finished[taskName] = TaskStateSkipped
			executor.logger.Info(logMessageTaskSkipped, zap.String(logFieldTask, taskName), zap.String(logFieldCause, blocker))
			continue
		}

		result := executor.runTask(ctx, taskName, project)
		run.results[taskIndex] = result
		run.finished[taskName] = result.State
		run.executed[taskName] = taskIndex

		if result.State != TaskStateFailed {
			continue
		}
		if firstFailure == nil {
			firstFailure = result.Error
		}
		if !options.ContinueOnFailure {
			run.skipRemaining(taskIndex + 1)
			return firstFailure
		}
	}
	return firstFailure
}

func (executor *Executor) runTask(ctx context.Context, taskName string, project *Project) TaskResult {
	result := TaskResult{Name: taskName, State: TaskStateRunning}
	definition, _ := executor.registry.definition(taskName)

	executor.logger.Info(logMessageTaskStarted, zap.String(logFieldTask, taskName), zap.String(logFieldState, string(result.State)))
	startTime := executor.now()
	bodyError := invokeBody(ctx, definition.Body, project)
	result.Duration = executor.now().Sub(startTime)

	if bodyError != nil {
		result.State = TaskStateFailed
		result.Error = TaskExecutionError{TaskName: taskName, Cause: bodyError}
		executor.logger.Error(logMessageTaskFailed,
			zap.String(logFieldTask, taskName),
			zap.String(logFieldState, string(result.State)),
			zap.Duration(logFieldDuration, result.Duration),
			zap.Error(bodyError),
		)
		return result
	}

	result.State = TaskStateSucceeded
	executor.logger.Info(logMessageTaskFinished,
		zap.String(logFieldTask, taskName),
		zap.String(logFieldState, string(result.State)),
		zap.Duration(logFieldDuration, result.Duration),
	)
	return result
}

func (executor *Executor) runInitializers(ctx context.Context, project *Project) error {
	for _, hook := range executor.registry.initializers {
		executor.logger.Debug(logMessageInitializerStarted, zap.String(logFieldHook, hook.Name))
		if hookError := invokeBody(ctx, TaskBody(hook.Func), project); hookError != nil {
			executor.logger.Error(logMessageInitializerFailed, zap.String(logFieldHook, hook.Name), zap.Error(hookError))
			return HookExecutionError{Phase: hook.Phase, HookName: hook.Name, Cause: hookError}
		}
	}
	return nil
}

func (executor *Executor) runFinalizers(ctx context.Context, project *Project) error {
	finalizerContext := context.WithoutCancel(ctx)
	var finalizerErrors []error
	for hookIndex := len(executor.registry.finalizers) - 1; hookIndex >= 0; hookIndex-- {
		hook := executor.registry.finalizers[hookIndex]
		executor.logger.Debug(logMessageFinalizerStarted, zap.String(logFieldHook, hook.Name))
		if hookError := invokeBody(finalizerContext, TaskBody(hook.Func), project); hookError != nil {
			executor.logger.Error(logMessageFinalizerFailed, zap.String(logFieldHook, hook.Name), zap.Error(hookError))
			finalizerErrors = append(finalizerErrors, HookExecutionError{Phase: hook.Phase, HookName: hook.Name, Cause: hookError})
		}
	}
	return errors.Join(finalizerErrors...)
}

func invokeBody(ctx context.Context, body TaskBody, project *Project) (bodyError error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			bodyError = fmt.Errorf(taskPanicTemplateConstant, recovered)
		}
	}()
	return body(ctx, project)
}

type planRun struct {
	results  []TaskResult
	finished map[string]TaskState
	executed map[string]int
}

func newPlanRun(plan ExecutionPlan) *planRun {
	results := make([]TaskResult, len(plan.Tasks))
	for taskIndex, taskName := range plan.Tasks {
		results[taskIndex] = TaskResult{Name: taskName, State: TaskStatePending}
	}
	return &planRun{
		results:  results,
		finished: make(map[string]TaskState, len(plan.Tasks)),
		executed: make(map[string]int, len(plan.Tasks)),
	}
}

func (run *planRun) skipRemaining(fromIndex int) {
	for taskIndex := fromIndex; taskIndex < len(run.results); taskIndex++ {
		if run.results[taskIndex].State == TaskStatePending {
			run.results[taskIndex].State = TaskStateSkipped
			run.finished[run.results[taskIndex].Name] = TaskStateSkipped
		}
	}
}

// blockedBy returns the first prerequisite that did not succeed. Plan order guarantees every
// prerequisite already reached a terminal state.
func (run *planRun) blockedBy(plan ExecutionPlan, taskName string) (string, bool) {
	for _, prerequisite := range plan.prerequisites[taskName] {
		if state, recorded := run.finished[prerequisite]; recorded && state != TaskStateSucceeded {
			return prerequisite, true
		}
	}
	return "", false
}
