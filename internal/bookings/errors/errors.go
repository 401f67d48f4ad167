package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrLockHeld = errors.New("vehicle lock held by another request")

	ErrLockNotOwned = errors.New("vehicle lock not owned by this request")
)
