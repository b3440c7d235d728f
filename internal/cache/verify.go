package cache

import (
	"errors"
	"fmt"

	"github.com/blackwell-systems/shelfread/internal/util"
)

// ErrChecksumMismatch is returned when a document does not hash to the
// checksum its catalog entry publishes.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// VerifyFile checks the sha256 of the file at path against expected.
// An empty expected checksum always passes.
func VerifyFile(path, expectedSHA256 string) error {
	if expectedSHA256 == "" {
		return nil
	}
	got, err := util.SHA256File(path)
	if err != nil {
		return fmt.Errorf("computing checksum: %w", err)
	}
	return checkDigest(got, expectedSHA256)
}

// Verify checks the cached document of bookID. checked is false when the book
// is not downloaded or no checksum is published, in which case nothing
// was checked.
func (m *Manager) Verify(bookID, expectedSHA256 string) (checked bool, err error) {
	if expectedSHA256 == "" || !m.Exists(bookID) {
		return false, nil
	}
	return true, VerifyFile(m.Path(bookID), expectedSHA256)
}

func checkDigest(got, expected string) error {
	if expected == "" || util.SameSHA256(got, expected) {
		return nil
	}
	return fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, expected, got)
}
