package util

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"strings"
)

// Digest is an io.Writer that hashes everything written through it, so a
// download can be checksummed while it is copied to disk.
type Digest struct {
	h hash.Hash
	n int64
}

func NewDigest() *Digest {
	return &Digest{h: sha256.New()}
}

func (d *Digest) Write(p []byte) (int, error) {
	d.n += int64(len(p))
	return d.h.Write(p)
}

// Hex returns the lowercase hex sha256 of the bytes written so far.
func (d *Digest) Hex() string { return hex.EncodeToString(d.h.Sum(nil)) }

// Len is the number of bytes hashed.
func (d *Digest) Len() int64 { return d.n }

// SHA256Reader drains r and returns its hex sha256.
func SHA256Reader(r io.Reader) (string, error) {
	d := NewDigest()
	if _, err := io.Copy(d, r); err != nil {
		return "", err
	}
	return d.Hex(), nil
}

func SHA256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return SHA256Reader(f)
}

// ValidSHA256 reports whether s looks like a hex sha256 (either case).
func ValidSHA256(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// SameSHA256 compares two hex digests ignoring case.
func SameSHA256(a, b string) bool { return strings.EqualFold(a, b) }
