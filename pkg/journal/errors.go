package journal

import "errors"

// Typed failures surfaced to the caller. Read-path absence is reported as a
// nil record, not an error; storage failures are wrapped and propagated
// unmodified, never retried or turned into defaults.
var (
	// ErrPermissionDenied is returned when a mutation is attempted by a
	// requester who does not own the target journal.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNoteNotSaved is returned when an image is attached to a note that
	// has not been persisted yet.
	ErrNoteNotSaved = errors.New("note not saved yet")

	// ErrNotFound is returned when a caller asks for a specific image or
	// resource by id and it does not exist.
	ErrNotFound = errors.New("not found")
)
