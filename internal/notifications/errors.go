package notifications

import "errors"

var (
	// ErrNotFound is returned when a notification does not exist or does not
	// belong to the requesting recipient.
	ErrNotFound = errors.New("notification not found")

	// ErrStoreUnavailable wraps transport-level faults from the backing store.
	ErrStoreUnavailable = errors.New("notification store unavailable")
)
