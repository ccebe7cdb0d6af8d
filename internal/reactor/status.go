package reactor

import (
	"time"
)

// TaskState is the lifecycle state of a planned task.
type TaskState string

// Task lifecycle states.
const (
	TaskStatePending   TaskState = "pending"
	TaskStateRunning   TaskState = "running"
	TaskStateSucceeded TaskState = "succeeded"
	TaskStateFailed    TaskState = "failed"
	TaskStateSkipped   TaskState = "skipped"
)

// Terminal reports whether no further transition is possible.
func (state TaskState) Terminal() bool {
	switch state {
	case TaskStateSucceeded, TaskStateFailed, TaskStateSkipped:
		return true
	default:
		return false
	}
}

// TaskResult captures the final state of one planned task.
type TaskResult struct {
	Name     string
	State    TaskState
	Duration time.Duration
	Error    error
}

// RunOutcome summarizes one executed plan.
type RunOutcome struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Plan       ExecutionPlan
	Results    []TaskResult
	Properties map[string]Value
}

// Succeeded reports whether every planned task succeeded.
func (outcome RunOutcome) Succeeded() bool {
	if len(outcome.Results) != len(outcome.Plan.Tasks) {
		return false
	}
	for _, result := range outcome.Results {
		if result.State != TaskStateSucceeded {
			return false
		}
	}
	return true
}

// Failures returns the results of failed tasks in plan order.
func (outcome RunOutcome) Failures() []TaskResult {
	failures := make([]TaskResult, 0)
	for _, result := range outcome.Results {
		if result.State == TaskStateFailed {
			failures = append(failures, result)
		}
	}
	return failures
}

// Result returns the result recorded for name.
func (outcome RunOutcome) Result(name string) (TaskResult, bool) {
	for _, result := range outcome.Results {
		if result.Name == name {
			return result, true
		}
	}
	return TaskResult{}, false
}

// Count returns how many results ended in state.
func (outcome RunOutcome) Count(state TaskState) int {
	count := 0
	for _, result := range outcome.Results {
		if result.State == state {
			count++
		}
	}
	return count
}
