package taskstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by updates that match no task.
var ErrNotFound = errors.New("task not found")

// StatusForError maps a run error to the status persisted for the task: nil
// completes, cancellation or deadline cancels, anything else (including an
// empty or invalid transcript) fails.
func StatusForError(err error) Status {
	switch {
	case err == nil:
		return StatusCompleted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCancelled
	default:
		return StatusFailed
	}
}
