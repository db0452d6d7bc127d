package list

import "errors"

// Sentinel errors for list operations.
var (
	// ErrInvalidLocation is returned when a Location no longer refers to a
	// live node, or was issued by a different list.
	ErrInvalidLocation = errors.New("list: location is invalid")

	// ErrNotFound is returned when a value is not present in the list.
	ErrNotFound = errors.New("list: value not found")

	// ErrEmptyList is returned when removing from an empty list.
	ErrEmptyList = errors.New("list: list is empty")

	// ErrConcurrentModification is returned when the list is structurally
	// modified while a traversal is in progress.
	ErrConcurrentModification = errors.New("list: modified during traversal")
)
