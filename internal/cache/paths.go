package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the suffix of every cached document.
const Ext = ".pdf"

// ErrInvalidID is returned for book ids that are not a single path element.
var ErrInvalidID = errors.New("invalid book id")

// Manager handles the local document cache.
type Manager struct {
	baseDir string
}

// New creates a cache Manager rooted at baseDir.
func New(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// Dir returns the cache root.
func (m *Manager) Dir() string { return m.baseDir }

// ValidID reports whether id can be used as a file name under the cache
// root without escaping it.
func ValidID(id string) error {
	if id == "" || id == "." || id == ".." ||
		strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Path returns the full cache path for a book.
// Layout: <baseDir>/<bookID>.pdf
func (m *Manager) Path(bookID string) string {
	return filepath.Join(m.baseDir, bookID+Ext)
}

// Exists reports whether the book's document is cached. Invalid ids are
// never cached.
func (m *Manager) Exists(bookID string) bool {
	if ValidID(bookID) != nil {
		return false
	}
	fi, err := os.Stat(m.Path(bookID))
	return err == nil && fi.Mode().IsRegular()
}

// EnsureDir creates the cache root.
func (m *Manager) EnsureDir() error {
	return os.MkdirAll(m.baseDir, 0750)
}

// Remove deletes the cached document and its cover if they exist.
func (m *Manager) Remove(bookID string) error {
	if err := ValidID(bookID); err != nil {
		return err
	}
	err := os.Remove(m.Path(bookID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return m.RemoveCover(bookID)
}
