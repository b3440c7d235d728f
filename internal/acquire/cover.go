package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/blackwell-systems/shelfread/internal/catalog"
)

// ErrNoCover is returned for a book whose catalog entry has no cover.
var ErrNoCover = errors.New("book has no cover url")

// maxCoverBytes caps a cover download; catalog covers are thumbnails.
const maxCoverBytes = 10 << 20

// Cover returns the local path of the book's cover image, fetching it into
// the cache on first use. Covers are fetched in both modes.
func (r *Resolver) Cover(ctx context.Context, book catalog.Book) (string, error) {
	if book.CoverURL() == "" {
		return "", ErrNoCover
	}
	if r.cache.HasCover(book.ID) {
		return r.cache.CoverPath(book.ID), nil
	}

	body, size, err := r.client.Get(ctx, book.CoverURL())
	if err != nil {
		return "", fmt.Errorf("fetching cover of %s: %w", book.ID, err)
	}
	defer func() { _ = body.Close() }()
	if size > maxCoverBytes {
		return "", fmt.Errorf("cover of %s is %d bytes, limit is %d", book.ID, size, maxCoverBytes)
	}

	path, err := r.cache.StoreCover(book.ID, io.LimitReader(body, maxCoverBytes))
	if err != nil {
		return "", fmt.Errorf("storing cover of %s: %w", book.ID, err)
	}
	r.log.Debug("cover cached", "book", book.ID, "path", path)
	return path, nil
}
