package domain

import "time"

// RunStatus is the outcome of one scheduled sweep trigger.
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	// RunSkipped means another sweep held the lease.
	RunSkipped RunStatus = "skipped"
	RunFailed  RunStatus = "failed"
)

// SweepRun records a single call to the sweep endpoint.
type SweepRun struct {
	StartedAt  time.Time
	Duration   time.Duration
	Status     RunStatus
	HTTPStatus int
	Message    string
	// Expired is the number of reminders the sweep moved to EXPIRED.
	Expired int
}
