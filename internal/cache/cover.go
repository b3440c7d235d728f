package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// coversDir holds catalog cover images next to the documents.
// Layout: <baseDir>/.covers/<bookID>.img
const coversDir = ".covers"

// CoverPath returns where the cover image of a book is stored. The format
// (PNG, JPEG) is whatever the catalog served.
func (m *Manager) CoverPath(bookID string) string {
	return filepath.Join(m.baseDir, coversDir, bookID+".img")
}

// HasCover reports whether a cover image is cached for the book.
func (m *Manager) HasCover(bookID string) bool {
	if ValidID(bookID) != nil {
		return false
	}
	fi, err := os.Stat(m.CoverPath(bookID))
	return err == nil && fi.Mode().IsRegular() && fi.Size() > 0
}

// StoreCover saves a cover image from r, replacing any previous one. Like
// documents, it is written to a temp file and renamed into place.
func (m *Manager) StoreCover(bookID string, r io.Reader) (string, error) {
	if err := ValidID(bookID); err != nil {
		return "", err
	}
	dir := filepath.Join(m.baseDir, coversDir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create covers dir: %w", err)
	}

	coverPath := m.CoverPath(bookID)
	f, err := os.CreateTemp(dir, bookID+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := f.Name()

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("writing cover: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, coverPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	return coverPath, nil
}

// RemoveCover deletes the cover image for a book if it exists.
func (m *Manager) RemoveCover(bookID string) error {
	if err := ValidID(bookID); err != nil {
		return err
	}
	err := os.Remove(m.CoverPath(bookID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (m *Manager) clearCovers() error {
	err := os.RemoveAll(filepath.Join(m.baseDir, coversDir))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
