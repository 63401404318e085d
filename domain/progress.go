package domain

import "context"

// ProgressManager coordinates progress reporting for long-running scans
type ProgressManager interface {
	// StartTask creates a new progress task with a description and total count
	StartTask(description string, total int) TaskProgress

	// IsInteractive returns true if progress output is being rendered
	IsInteractive() bool

	// Close cleans up all active tasks
	Close()
}

// TaskProgress tracks completion of a single unit of work
type TaskProgress interface {
	// Increment adds n to the current progress
	Increment(n int)

	// Describe updates the current item description
	Describe(description string)

	// Complete marks the task as finished
	Complete()
}

// ExecutableTask is a named unit of work that can run concurrently with
// other tasks
type ExecutableTask interface {
	// Name returns the task name used in error reporting
	Name() string

	// Execute runs the task and returns its result
	Execute(ctx context.Context) (interface{}, error)

	// IsEnabled reports whether the task should run
	IsEnabled() bool
}

// ParallelExecutor runs a set of tasks concurrently
type ParallelExecutor interface {
	// Execute runs all enabled tasks and collects their errors
	Execute(ctx context.Context, tasks []ExecutableTask) error
}
