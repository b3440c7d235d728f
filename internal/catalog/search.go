package catalog

import "strings"

// Filter selects books by a free-text query.
type Filter struct {
	Search string // case-insensitive substring of title or author
}

// Apply returns the books matching the filter, in catalog order. Only the
// empty query matches everything; whitespace is part of the substring. The
// result is always a fresh, non-nil slice.
func (f Filter) Apply(books []Book) []Book {
	q := strings.ToLower(f.Search)
	out := make([]Book, 0, len(books))
	for _, b := range books {
		if q != "" && !Matches(b, q) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Search is shorthand for Filter{Search: query}.Apply(books).
func Search(books []Book, query string) []Book {
	return Filter{Search: query}.Apply(books)
}

// Matches reports whether the lowercased query q occurs in b's title or author.
func Matches(b Book, q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.Author), q)
}

// ByID returns the first book with the given ID, or nil.
func ByID(books []Book, id string) *Book {
	for i := range books {
		if books[i].ID == id {
			return &books[i]
		}
	}
	return nil
}
