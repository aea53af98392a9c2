package appointments

import "errors"

var (
	// ErrNotFound is returned when no appointment exists for the given id.
	ErrNotFound = errors.New("appointment not found")

	// ErrInvalidTransition is returned when the requested action is not legal
	// from the appointment's current status.
	ErrInvalidTransition = errors.New("appointment already handled by another action")

	// ErrConcurrentModification is returned to the losing writer when the
	// stored status changed between the validating read and the write.
	ErrConcurrentModification = errors.New("appointment modified concurrently")

	// ErrStoreUnavailable wraps transport or permission faults from the
	// backing store.
	ErrStoreUnavailable = errors.New("appointment store temporarily unavailable")
)
