package reader

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/blackwell-systems/shelfread/internal/kvstore"
)

// Bookmark is a user note attached to a page.
type Bookmark struct {
	Page int    `json:"page"`
	Note string `json:"note"`
}

// PositionKey is the store key holding a book's last-read page.
func PositionKey(bookID string) string { return bookID + "-lastPage" }

// BookmarksKey is the store key holding a book's bookmark list.
func BookmarksKey(bookID string) string { return bookID + "-bookmarks" }

// ParsePage decodes a stored page value. Anything but a positive decimal
// integer is not a position.
func ParsePage(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// LoadPosition reads the saved page for a book. ok is false when nothing
// usable is stored.
func LoadPosition(ctx context.Context, s kvstore.Store, bookID string) (page int, ok bool, err error) {
	key := PositionKey(bookID)
	v, found, err := s.Get(ctx, key)
	if err != nil {
		return 0, false, &PersistenceError{Op: "get", Key: key, Err: err}
	}
	if !found {
		return 0, false, nil
	}
	page, ok = ParsePage(v)
	return page, ok, nil
}

// LoadBookmarks reads a book's bookmark list. A missing key is an empty
// list, never nil.
func LoadBookmarks(ctx context.Context, s kvstore.Store, bookID string) ([]Bookmark, error) {
	key := BookmarksKey(bookID)
	v, found, err := s.Get(ctx, key)
	if err != nil {
		return []Bookmark{}, &PersistenceError{Op: "get", Key: key, Err: err}
	}
	if !found {
		return []Bookmark{}, nil
	}
	list, err := DecodeBookmarks(v)
	if err != nil {
		return []Bookmark{}, &PersistenceError{Op: "get", Key: key, Err: err}
	}
	return list, nil
}

// EncodeBookmarks renders a bookmark list in its stored form, a JSON array
// of {"page","note"} objects.
func EncodeBookmarks(list []Bookmark) (string, error) {
	if list == nil {
		list = []Bookmark{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encoding bookmarks: %w", err)
	}
	return string(b), nil
}

// DecodeBookmarks parses a stored bookmark list.
func DecodeBookmarks(s string) ([]Bookmark, error) {
	var list []Bookmark
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		return nil, fmt.Errorf("decoding bookmarks: %w", err)
	}
	if list == nil {
		list = []Bookmark{}
	}
	return list, nil
}
