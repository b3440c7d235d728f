package render

import (
	"errors"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrEmptyDocument is returned for a PDF that validates but has no pages.
var ErrEmptyDocument = errors.New("document has no pages")

// Info describes a document the viewer can show.
type Info struct {
	Path  string
	Pages int
	Size  int64
}

// RenderError reports a document the viewer cannot display.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("cannot display %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Inspect validates the PDF at path and reports its page count. This is
// the "load complete" signal for a reading session.
func Inspect(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, &RenderError{Path: path, Err: err}
	}

	var pages int
	err = dontPanic(func() error {
		// nil selects pdfcpu's default (relaxed) validation.
		if err := api.ValidateFile(path, nil); err != nil {
			return fmt.Errorf("validating: %w", err)
		}
		n, err := api.PageCountFile(path)
		if err != nil {
			return fmt.Errorf("counting pages: %w", err)
		}
		pages = n
		return nil
	})
	if err != nil {
		return Info{}, &RenderError{Path: path, Err: err}
	}
	if pages < 1 {
		return Info{}, &RenderError{Path: path, Err: ErrEmptyDocument}
	}
	return Info{Path: path, Pages: pages, Size: fi.Size()}, nil
}

// dontPanic runs f and turns a panic inside the PDF library into an error.
func dontPanic(f func() error) (err error) {
	defer func() {
		if x := recover(); x != nil {
			err = fmt.Errorf("recovered from: %v", x)
		}
	}()
	return f()
}
