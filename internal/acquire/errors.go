package acquire

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the content URL does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the host refuses the download.
	ErrForbidden = errors.New("forbidden")
	// ErrNoContentURL is returned for a book without a content URL.
	ErrNoContentURL = errors.New("book has no content url")
)

// DownloadError reports a book whose content could not be fetched. No file
// is left at the book's local path when it is returned.
type DownloadError struct {
	BookID string
	URL    string
	Err    error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("downloading %s from %s: %v", e.BookID, e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }
