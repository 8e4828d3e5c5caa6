package workflow

import "errors"

// Domain errors shared by the workflow engine and the stores.
// Callers match these with errors.Is; none of them is retryable.
var (
	// ErrNotFound is returned when a referenced template, step, instance,
	// attachment or user does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on a uniqueness violation or when a concurrent
	// transition already consumed the instance state the caller read
	ErrConflict = errors.New("conflict")

	// ErrForbidden is returned when the actor is not the assignee of the
	// current step
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTemplate is returned when a template has no steps at
	// instantiation time
	ErrInvalidTemplate = errors.New("template has no steps")

	// ErrInvalidState is returned when an instance is already terminal or its
	// current-step pointer is dangling
	ErrInvalidState = errors.New("invalid instance state")
)
