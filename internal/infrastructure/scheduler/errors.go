package scheduler

import "errors"

var (
	// ErrJobNameRequired indicates a job was registered without a name
	ErrJobNameRequired = errors.New("scheduler: job name is required")
	// ErrInvalidInterval indicates a non-positive job interval
	ErrInvalidInterval = errors.New("scheduler: interval must be positive")
	// ErrNilHandler indicates a job was registered without a handler
	ErrNilHandler = errors.New("scheduler: handler is required")
	// ErrDuplicateJob indicates the job name is already registered
	ErrDuplicateJob = errors.New("scheduler: job already registered")
	// ErrJobNotFound indicates the job name is not registered
	ErrJobNotFound = errors.New("scheduler: job not found")
	// ErrJobAlreadyRunning indicates a manual trigger raced an active run
	ErrJobAlreadyRunning = errors.New("scheduler: job already running")
)
