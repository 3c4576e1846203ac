package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchInProgress is returned when a fetch (or a download directory
	// change) is attempted while another fetch is still awaiting its download.
	ErrFetchInProgress = errors.New("catalog: a fetch is already in progress")

	// ErrNotInitialized is returned by operations that need a running session.
	ErrNotInitialized = errors.New("catalog: session not initialized")

	// ErrClosed is returned when initializing a session that was closed.
	ErrClosed = errors.New("catalog: session closed")
)

// SessionError reports a failure to start or configure the automation session.
// It is fatal for the session.
type SessionError struct {
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("catalog: session %s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// AcquisitionError reports a download that never began, either because the
// page could not be driven or because the caller gave up first.
type AcquisitionError struct {
	Name string
	Err  error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("catalog: download of %q never began: %v", e.Name, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }
