package reader

import (
	"errors"
	"fmt"
)

// ErrSessionClosed is returned by mutating operations on a closed session.
var ErrSessionClosed = errors.New("reading session is closed")

// ValidationError rejects user input. Title and Message are shown to the
// user as an alert; no state was changed.
type ValidationError struct {
	Title   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Title + ": " + e.Message
}

// PersistenceError reports a failed key-value read or write. It is logged,
// never shown: in-memory state stays authoritative for the session.
type PersistenceError struct {
	Op  string // get, set, remove
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func errNoteRequired() error {
	return &ValidationError{Title: "Note Required", Message: "Please enter a note for the bookmark."}
}
