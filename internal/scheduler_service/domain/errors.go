package domain

import "errors"

var (
	// ErrSweepRejected is returned when the notification service refuses the trigger credentials.
	ErrSweepRejected = errors.New("sweep trigger rejected")
	// ErrSweepFailed covers any other non-2xx answer from the sweep endpoint.
	ErrSweepFailed = errors.New("sweep failed")
)
