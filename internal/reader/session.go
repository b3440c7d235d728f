// Package reader holds the reading session: the per-book state a viewer
// drives (current page, slider, bookmarks) and the persistence of that
// state through the key-value store.
package reader

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/blackwell-systems/shelfread/internal/catalog"
)

// Phase is the session lifecycle state.
type Phase int

const (
	// Initializing: source not resolved yet, or the saved page not restored.
	Initializing Phase = iota
	// Ready: the viewer is active on the restored or default page.
	Ready
	// Closed: torn down; nothing more is persisted.
	Closed
)

func (p Phase) String() string {
	switch p {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// defaultSliderMax is the slider range while the page count is unknown.
const defaultSliderMax = 10

// Wording of the bookmark deletion prompt passed to a Confirmer.
const (
	DeleteBookmarkTitle  = "Delete Bookmark"
	DeleteBookmarkPrompt = "Are you sure you want to delete this bookmark?"
)

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, title, message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, title, message string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, title, message string) bool {
	return f(ctx, title, message)
}

// AlwaysConfirm approves everything; for scripted callers that already
// asked.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string, string) bool { return true })

// State is an immutable snapshot of a session for the view layer.
type State struct {
	BookID     string
	Phase      Phase
	Page       int // page shown, including slider previews
	Committed  int // last page the viewer was told to jump to
	TotalPages int // 0 when unknown
	SliderMax  int
	Dragging   bool
	Restored   bool
	Bookmarks  []Bookmark
}

// Options tune a session.
type Options struct {
	Log *slog.Logger
}

// Session is the live state of one open book.
type Session struct {
	book catalog.Book
	w    *Writer
	log  *slog.Logger

	mu             sync.Mutex
	phase          Phase
	page           int
	committed      int
	total          int
	dragging       bool
	restoreStarted bool
	restored       bool
	userMoved      bool
	held           int // page write waiting for the restore to apply
	bookmarks      []Bookmark
}

// Open starts a session for book on page 1 and loads its bookmarks. A
// failed bookmark read is logged and leaves the list empty.
func Open(ctx context.Context, book catalog.Book, w *Writer, opts Options) *Session {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	s := &Session{
		book:      book,
		w:         w,
		log:       log.With("book", book.ID),
		phase:     Initializing,
		page:      1,
		committed: 1,
		total:     book.TotalPages,
	}
	list, err := LoadBookmarks(ctx, w.Store(), book.ID)
	if err != nil {
		s.log.Warn("loading bookmarks failed", "err", err)
	}
	s.bookmarks = list
	return s
}

// Book returns the book this session reads.
func (s *Session) Book() catalog.Book { return s.book }

// OnSourceResolved is the viewer's "load complete" event. It records the
// page count and, the first time only, restores the saved page. A page the
// user moved to while the restore was in flight wins over the saved one.
func (s *Session) OnSourceResolved(ctx context.Context, totalPages int) {
	s.mu.Lock()
	if s.phase == Closed {
		s.mu.Unlock()
		return
	}
	if totalPages > 0 {
		s.total = totalPages
	}
	if s.restoreStarted {
		s.mu.Unlock()
		return
	}
	s.restoreStarted = true
	s.mu.Unlock()

	page, ok, err := LoadPosition(ctx, s.w.Store(), s.book.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == Closed {
		s.log.Debug("dropping restore for closed session")
		return
	}
	if err != nil {
		s.log.Warn("restoring last page failed", "err", err)
	}
	if ok && !s.userMoved {
		// A drag in progress keeps its preview; the release commits.
		s.committed = page
		if !s.dragging {
			s.page = page
		}
		s.log.Debug("restored last page", "page", page)
	}
	s.restored = true
	s.phase = Ready
	if s.held > 0 {
		s.persistPageLocked(s.held)
		s.held = 0
	}
}

// OnPageChanged is the viewer reporting a new current page. It is ignored
// during a slider drag and after Close.
func (s *Session) OnPageChanged(page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == Closed || s.dragging {
		return nil
	}
	if page < 1 {
		return &ValidationError{Title: "Invalid Page", Message: "Page numbers start at 1."}
	}
	s.page = page
	s.writePageLocked(page)
	return nil
}

// OnSliderChange previews a slider value while dragging. Nothing is
// persisted. It returns the previewed page.
func (s *Session) OnSliderChange(value float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == Closed {
		return s.page
	}
	s.dragging = true
	s.page = s.clampLocked(value)
	return s.page
}

// OnSliderComplete commits the released slider value: the page is
// persisted and returned as the jump target for the viewer.
func (s *Session) OnSliderComplete(value float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == Closed {
		return s.committed
	}
	s.dragging = false
	s.commitLocked(s.clampLocked(value))
	return s.committed
}

// JumpToBookmark commits page like a released slider and returns the jump
// target.
func (s *Session) JumpToBookmark(page int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == Closed {
		return s.committed, ErrSessionClosed
	}
	if page < 1 {
		return s.committed, &ValidationError{Title: "Invalid Page", Message: "Page numbers start at 1."}
	}
	s.dragging = false
	s.commitLocked(page)
	return s.committed, nil
}

// AddBookmark appends a bookmark for the current page. The note is
// trimmed; a blank note is rejected without touching state or the store.
func (s *Session) AddBookmark(note string) (Bookmark, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return Bookmark{}, errNoteRequired()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == Closed {
		return Bookmark{}, ErrSessionClosed
	}
	b := Bookmark{Page: s.page, Note: note}
	updated := make([]Bookmark, len(s.bookmarks), len(s.bookmarks)+1)
	copy(updated, s.bookmarks)
	s.bookmarks = append(updated, b)
	s.persistBookmarksLocked()
	return b, nil
}

// DeleteBookmark removes the bookmark at index after c approves. It
// reports whether a bookmark was removed.
func (s *Session) DeleteBookmark(ctx context.Context, index int, c Confirmer) (bool, error) {
	s.mu.Lock()
	if s.phase == Closed {
		s.mu.Unlock()
		return false, ErrSessionClosed
	}
	if index < 0 || index >= len(s.bookmarks) {
		s.mu.Unlock()
		return false, errNoSuchBookmark(index)
	}
	target := s.bookmarks[index]
	s.mu.Unlock()

	if c == nil || !c.Confirm(ctx, DeleteBookmarkTitle, DeleteBookmarkPrompt) {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == Closed {
		return false, ErrSessionClosed
	}
	// The list may have changed while the user was asked.
	if index >= len(s.bookmarks) || s.bookmarks[index] != target {
		return false, errNoSuchBookmark(index)
	}
	updated := make([]Bookmark, 0, len(s.bookmarks)-1)
	updated = append(updated, s.bookmarks[:index]...)
	updated = append(updated, s.bookmarks[index+1:]...)
	s.bookmarks = updated
	s.persistBookmarksLocked()
	return true, nil
}

// Bookmarks returns a copy of the bookmark list.
func (s *Session) Bookmarks() []Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Bookmark(nil), s.bookmarks...)
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		BookID:     s.book.ID,
		Phase:      s.phase,
		Page:       s.page,
		Committed:  s.committed,
		TotalPages: s.total,
		SliderMax:  s.sliderMaxLocked(),
		Dragging:   s.dragging,
		Restored:   s.restored,
		Bookmarks:  append([]Bookmark{}, s.bookmarks...),
	}
}

// Settled waits until every write this session's book has queued so far
// has completed.
func (s *Session) Settled(ctx context.Context) error {
	return s.w.Settled(ctx, s.book.ID)
}

// Close ends the session. A page change still held back by a pending
// restore is written now; after Close nothing new is queued. Writes
// already queued complete in order.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == Closed {
		return
	}
	if s.held > 0 {
		s.persistPageLocked(s.held)
		s.held = 0
	}
	s.phase = Closed
	s.dragging = false
}

func (s *Session) commitLocked(page int) {
	s.page = page
	s.committed = page
	s.writePageLocked(page)
}

// writePageLocked persists page, or holds it until the restore applies so
// the restore cannot overwrite a newer page.
func (s *Session) writePageLocked(page int) {
	if !s.restored {
		s.userMoved = true
		s.held = page
		return
	}
	s.persistPageLocked(page)
}

func (s *Session) persistPageLocked(page int) {
	s.w.Set(s.book.ID, PositionKey(s.book.ID), strconv.Itoa(page))
}

func (s *Session) persistBookmarksLocked() {
	v, err := EncodeBookmarks(s.bookmarks)
	if err != nil {
		s.log.Warn("encoding bookmarks failed", "err", err)
		return
	}
	s.w.Set(s.book.ID, BookmarksKey(s.book.ID), v)
}

func (s *Session) sliderMaxLocked() int {
	if s.total > 0 {
		return s.total
	}
	return defaultSliderMax
}

func (s *Session) clampLocked(value float64) int {
	p := int(math.Round(value))
	if p < 1 {
		p = 1
	}
	if hi := s.sliderMaxLocked(); p > hi {
		p = hi
	}
	return p
}

func errNoSuchBookmark(index int) error {
	return &ValidationError{Title: "No Such Bookmark", Message: "There is no bookmark #" + strconv.Itoa(index+1) + "."}
}
