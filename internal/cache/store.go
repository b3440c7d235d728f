package cache

import (
	"fmt"
	"io"
	"os"

	"github.com/blackwell-systems/shelfread/internal/util"
)

// Store writes r to the book's cache path. The data is hashed as it is
// written and checked against expectedSHA256 when that is non-empty. Data lands in a .tmp file
// that is renamed into place only on success, so the final path never
// holds a partial document. Returns the final file path.
func (m *Manager) Store(bookID string, r io.Reader, expectedSHA256 string) (string, error) {
	if err := ValidID(bookID); err != nil {
		return "", err
	}
	if err := m.EnsureDir(); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	destPath := m.Path(bookID)
	tmpPath := destPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	digest := util.NewDigest()
	if _, err := io.Copy(io.MultiWriter(f, digest), r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("writing to cache: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	if err := checkDigest(digest.Hex(), expectedSHA256); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	return destPath, nil
}
