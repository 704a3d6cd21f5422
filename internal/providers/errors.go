package providers

import (
	"errors"
	"fmt"
)

var (
	// ErrUnconfigured reports a missing or unusable credential. It is fatal
	// for a run.
	ErrUnconfigured = errors.New("backend not configured")

	// ErrUnreachable reports that a backend failed its liveness check. It is
	// fatal for a run.
	ErrUnreachable = errors.New("backend unreachable")

	errNotInitialized = errors.New("backend used before Initialize")
	errEmptyResponse  = errors.New("empty response")
)

// BackendError wraps a failed FixCode request. It is local to one file.
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// IsBackendError reports whether err is or wraps a *BackendError.
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}
