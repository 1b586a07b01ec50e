package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrReportFailed    = errors.New("expiration report could not be sent")
	ErrSweepInProgress = errors.New("expiration sweep already in progress")
)

// ValidationError rejects a whole request before any side effect. Message is shown to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// DownstreamError wraps a store or transport failure.
type DownstreamError struct {
	Op  string
	Err error
}

func (e *DownstreamError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *DownstreamError) Unwrap() error { return e.Err }

func Downstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DownstreamError{Op: op, Err: err}
}
