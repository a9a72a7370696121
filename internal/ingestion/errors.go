package ingestion

import (
	"errors"
	"fmt"
)

// TransientFetchError marks a fetch failure that is worth retrying: network
// errors, timeouts and 5xx responses. After retries are exhausted it becomes
// a source-level failure.
type TransientFetchError struct {
	Err error
}

func (e *TransientFetchError) Error() string { return e.Err.Error() }
func (e *TransientFetchError) Unwrap() error { return e.Err }

// PermanentFetchError marks a fetch failure that retrying cannot fix: 4xx
// responses and malformed URLs. The source fails immediately.
type PermanentFetchError struct {
	Err error
}

func (e *PermanentFetchError) Error() string { return e.Err.Error() }
func (e *PermanentFetchError) Unwrap() error { return e.Err }

// ValidationError is returned by the normalizer when a raw record is missing
// required fields. The record is dropped and counted as failed; the run
// continues.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation rejected: %s %s", e.Field, e.Reason)
}

// StorageWriteError wraps a repository failure for a single event write. It
// aborts that event only, never the source or the run.
type StorageWriteError struct {
	SourceURL string
	Err       error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("storage write for %s: %v", e.SourceURL, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// ErrRunInProgress is returned by TriggerRun when a run is already executing.
var ErrRunInProgress = errors.New("ingestion run already in progress")

// NewTransientFetchError wraps err as retryable.
func NewTransientFetchError(err error) error {
	return &TransientFetchError{Err: err}
}

// NewPermanentFetchError wraps err as non-retryable.
func NewPermanentFetchError(err error) error {
	return &PermanentFetchError{Err: err}
}

// IsTransient reports whether err should trigger a retry.
func IsTransient(err error) bool {
	var transient *TransientFetchError
	return errors.As(err, &transient)
}

// IsValidationError reports whether err is a normalizer rejection.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
