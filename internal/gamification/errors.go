package gamification

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no resolved user identity reached the
	// service; nothing was read or written.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrStoreUnavailable means the persistence capability failed or
	// timed out. The operation was aborted with no partial state change;
	// retry policy belongs to the caller.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrConflict is returned by the store when a conditional profile
	// update lost a race. The recorder retries internally; callers only
	// see ErrStoreUnavailable once retries are exhausted.
	ErrConflict = errors.New("concurrent profile update")

	// ErrDuplicateEvent is returned by the store when an append hits an
	// idempotency constraint. The recorder treats it as a no-op.
	ErrDuplicateEvent = errors.New("duplicate event")
)

// InvalidEventError reports a malformed or unknown event submission.
// Never persisted; no state change.
type InvalidEventError struct {
	Reason string
}

func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("invalid event: %s", e.Reason)
}
