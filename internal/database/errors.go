package database

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested row does not exist
	ErrNotFound = errors.New("not found")

	// ErrVersionNotFound is returned when a note exists but the requested
	// version id does not appear in its history
	ErrVersionNotFound = errors.New("version not found")

	// ErrForbidden is returned when the actor lacks permission for the
	// requested mutation
	ErrForbidden = errors.New("forbidden")

	// ErrDeleteFailed is returned when a delete matched nothing, e.g. a
	// comment id that is already gone
	ErrDeleteFailed = errors.New("delete failed")

	// ErrDuplicate is the sentinel matched by DuplicateError via errors.Is
	ErrDuplicate = errors.New("duplicate")
)

// DuplicateError reports a rejected creation with the reason the candidate
// matched an existing note.
type DuplicateError struct {
	Reason string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate note: %s", e.Reason)
}

// Is lets callers match any DuplicateError against ErrDuplicate.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}
