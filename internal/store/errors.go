package store

import (
	"errors"
	"strings"

	sqlite "modernc.org/sqlite"
)

// Error kinds surfaced to handlers. Every failure mode a user can
// trigger maps to one of these; anything else is an internal error.
var (
	// ErrNotFound means the referenced item or claim does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrPermissionDenied means the actor is not allowed to perform the
	// operation (not the owner, or claiming an own item).
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDuplicateClaim means the claimant already has a claim on the item.
	ErrDuplicateClaim = errors.New("claim already exists")
)

// ValidationError carries per-field messages for re-rendering a form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, field+": "+msg)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure (extended result code SQLITE_CONSTRAINT_UNIQUE).
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == 2067
}
