package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to submit a job to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrUnknownSyncKind is returned for a job whose kind has no sync entry point
	ErrUnknownSyncKind = errors.New("unknown sync kind")

	// ErrSyncFailed is returned when a page could not be fetched at all
	ErrSyncFailed = errors.New("reconcile sync failed")

	// ErrSyncTimeout is returned when a job runs past its timeout
	ErrSyncTimeout = errors.New("reconcile sync timed out")

	// ErrSyncAlreadyInProgress is returned when the same tenant and kind already has a job queued or running
	ErrSyncAlreadyInProgress = errors.New("sync already in progress for this tenant and kind")
)
