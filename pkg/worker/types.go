package worker

import (
	"fmt"
	"time"
)

// Status represents the current state of the worker pool
type Status string

const (
	// StatusIdle indicates the pool is ready but not processing
	StatusIdle Status = "idle"

	// StatusProcessing indicates the pool is actively processing tasks
	StatusProcessing Status = "processing"

	// StatusShuttingDown indicates Stop is waiting for the workers
	StatusShuttingDown Status = "shutting_down"

	// StatusStopped indicates the pool has not started or has been stopped
	StatusStopped Status = "stopped"
)

// Stats provides runtime statistics about the worker pool
type Stats struct {
	// ActiveWorkers is the number of workers inside a task right now
	ActiveWorkers int

	// QueuedTasks is the number of submitted tasks not yet picked up
	QueuedTasks int

	// CompletedTasks is the number of tasks that returned without error
	CompletedTasks int

	// FailedTasks counts task errors, including tasks skipped on cancellation
	FailedTasks int

	Status Status

	// Uptime is the time since Start
	Uptime time.Duration
}

// Processed is the number of tasks handed to the result handler.
func (s Stats) Processed() int {
	return s.CompletedTasks + s.FailedTasks
}

func (s Stats) String() string {
	return fmt.Sprintf("%s: %d active, %d queued, %d completed, %d failed, up %s",
		s.Status, s.ActiveWorkers, s.QueuedTasks, s.CompletedTasks, s.FailedTasks,
		s.Uptime.Round(time.Millisecond))
}
