package reader_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/shelfread/internal/catalog"
	"github.com/blackwell-systems/shelfread/internal/kvstore"
	"github.com/blackwell-systems/shelfread/internal/logging"
	"github.com/blackwell-systems/shelfread/internal/reader"
)

// spyStore counts calls and can hold position reads until released.
type spyStore struct {
	kvstore.Store

	mu   sync.Mutex
	sets map[string]int
	gets map[string]int
	gate chan struct{}
}

func newSpy(s kvstore.Store) *spyStore {
	return &spyStore{Store: s, sets: map[string]int{}, gets: map[string]int{}}
}

func (s *spyStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	s.gets[key]++
	gate := s.gate
	s.mu.Unlock()
	if gate != nil && strings.HasSuffix(key, "-lastPage") {
		<-gate
	}
	return s.Store.Get(ctx, key)
}

func (s *spyStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.sets[key]++
	s.mu.Unlock()
	return s.Store.Set(ctx, key, value)
}

func (s *spyStore) setCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets[key]
}

func (s *spyStore) getCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets[key]
}

var dune = catalog.Book{ID: "b1", Title: "Dune", Author: "Herbert"}

func openSession(t *testing.T, store kvstore.Store) (*reader.Session, *reader.Writer) {
	t.Helper()
	w := reader.NewWriter(store, logging.Discard(), time.Second)
	s := reader.Open(context.Background(), dune, w, reader.Options{Log: logging.Discard()})
	return s, w
}

func settle(t *testing.T, s *reader.Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Settled(ctx))
}

func stored(t *testing.T, store kvstore.Store, key string) (string, bool) {
	t.Helper()
	v, ok, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestSession_FreshBookStartsOnPageOne(t *testing.T) {
	s, _ := openSession(t, kvstore.NewMemory())

	st := s.Snapshot()
	assert.Equal(t, reader.Initializing, st.Phase)
	assert.Equal(t, 1, st.Page)
	assert.Empty(t, st.Bookmarks)

	s.OnSourceResolved(context.Background(), 0)
	st = s.Snapshot()
	assert.Equal(t, reader.Ready, st.Phase)
	assert.True(t, st.Restored)
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, 1, st.Committed)
}

func TestSession_RestoresExactlyOnce(t *testing.T) {
	mem := kvstore.NewMemory()
	require.NoError(t, mem.Set(context.Background(), reader.PositionKey("b1"), "42"))
	spy := newSpy(mem)
	s, _ := openSession(t, spy)

	s.OnSourceResolved(context.Background(), 100)
	assert.Equal(t, 42, s.Snapshot().Page)
	assert.Equal(t, 42, s.Snapshot().Committed)

	require.NoError(t, s.OnPageChanged(43))
	s.OnSourceResolved(context.Background(), 100)

	st := s.Snapshot()
	assert.Equal(t, 43, st.Page, "second load-complete must not jump back")
	assert.Equal(t, 1, spy.getCount(reader.PositionKey("b1")))
}

func TestSession_IgnoresCorruptPosition(t *testing.T) {
	mem := kvstore.NewMemory()
	require.NoError(t, mem.Set(context.Background(), reader.PositionKey("b1"), "not-a-number"))
	s, _ := openSession(t, mem)

	s.OnSourceResolved(context.Background(), 10)
	assert.Equal(t, 1, s.Snapshot().Page)
	assert.Equal(t, reader.Ready, s.Snapshot().Phase)
}

func TestSession_SecondEventUpdatesTotalPages(t *testing.T) {
	s, _ := openSession(t, kvstore.NewMemory())
	s.OnSourceResolved(context.Background(), 0)
	assert.Equal(t, 10, s.Snapshot().SliderMax)

	s.OnSourceResolved(context.Background(), 250)
	assert.Equal(t, 250, s.Snapshot().TotalPages)
	assert.Equal(t, 250, s.Snapshot().SliderMax)
}

func TestSession_PageSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yml")

	store, err := kvstore.OpenFile(path)
	require.NoError(t, err)
	s, w := openSession(t, store)
	s.OnSourceResolved(context.Background(), 300)
	require.NoError(t, s.OnPageChanged(5))
	settle(t, s)
	s.Close()
	require.NoError(t, w.Close(context.Background()))
	require.NoError(t, store.Close())

	reopened, err := kvstore.OpenFile(path)
	require.NoError(t, err)
	s2, _ := openSession(t, reopened)
	s2.OnSourceResolved(context.Background(), 300)
	assert.Equal(t, 5, s2.Snapshot().Page)
}

func TestSession_PageWritesAreLastWriteWins(t *testing.T) {
	mem := kvstore.NewMemory()
	s, _ := openSession(t, mem)
	s.OnSourceResolved(context.Background(), 500)

	for p := 1; p <= 50; p++ {
		require.NoError(t, s.OnPageChanged(p))
	}
	settle(t, s)

	v, ok := stored(t, mem, reader.PositionKey("b1"))
	require.True(t, ok)
	assert.Equal(t, "50", v)
}

func TestSession_RejectsNonPositivePage(t *testing.T) {
	s, _ := openSession(t, kvstore.NewMemory())
	s.OnSourceResolved(context.Background(), 10)

	var ve *reader.ValidationError
	require.True(t, errors.As(s.OnPageChanged(0), &ve))
	assert.Equal(t, 1, s.Snapshot().Page)
}

func TestSession_UserPageWinsOverInFlightRestore(t *testing.T) {
	mem := kvstore.NewMemory()
	require.NoError(t, mem.Set(context.Background(), reader.PositionKey("b1"), "42"))
	spy := newSpy(mem)
	spy.gate = make(chan struct{})
	s, _ := openSession(t, spy)

	done := make(chan struct{})
	go func() {
		s.OnSourceResolved(context.Background(), 100)
		close(done)
	}()
	require.Eventually(t, func() bool { return spy.getCount(reader.PositionKey("b1")) == 1 },
		time.Second, 5*time.Millisecond)

	assert.Equal(t, 7, s.OnSliderComplete(7))
	assert.Equal(t, 0, spy.setCount(reader.PositionKey("b1")), "write must wait for the restore")

	close(spy.gate)
	<-done
	settle(t, s)

	st := s.Snapshot()
	assert.Equal(t, 7, st.Page)
	assert.Equal(t, 7, st.Committed)
	v, _ := stored(t, mem, reader.PositionKey("b1"))
	assert.Equal(t, "7", v)
}

func TestSession_LateRestoreAfterCloseIsDropped(t *testing.T) {
	mem := kvstore.NewMemory()
	require.NoError(t, mem.Set(context.Background(), reader.PositionKey("b1"), "42"))
	spy := newSpy(mem)
	spy.gate = make(chan struct{})
	s, _ := openSession(t, spy)

	done := make(chan struct{})
	go func() {
		s.OnSourceResolved(context.Background(), 100)
		close(done)
	}()
	require.Eventually(t, func() bool { return spy.getCount(reader.PositionKey("b1")) == 1 },
		time.Second, 5*time.Millisecond)

	s.Close()
	close(spy.gate)
	<-done

	st := s.Snapshot()
	assert.Equal(t, reader.Closed, st.Phase)
	assert.Equal(t, 1, st.Page)
	assert.False(t, st.Restored)
}

func TestSession_NoWritesAfterClose(t *testing.T) {
	spy := newSpy(kvstore.NewMemory())
	s, _ := openSession(t, spy)
	s.OnSourceResolved(context.Background(), 10)
	s.Close()

	require.NoError(t, s.OnPageChanged(4))
	s.OnSliderComplete(6)
	_, err := s.AddBookmark("late")
	assert.ErrorIs(t, err, reader.ErrSessionClosed)
	settle(t, s)

	assert.Equal(t, 0, spy.setCount(reader.PositionKey("b1")))
	assert.Equal(t, 0, spy.setCount(reader.BookmarksKey("b1")))
}

func TestSession_SliderDragSuppressesPersistence(t *testing.T) {
	spy := newSpy(kvstore.NewMemory())
	s, _ := openSession(t, spy)
	s.OnSourceResolved(context.Background(), 0)

	assert.Equal(t, 3, s.OnSliderChange(2.6))
	assert.True(t, s.Snapshot().Dragging)
	require.NoError(t, s.OnPageChanged(9)) // viewer noise during the drag
	assert.Equal(t, 10, s.OnSliderChange(99), "preview clamps to the slider max")
	settle(t, s)
	assert.Equal(t, 0, spy.setCount(reader.PositionKey("b1")))
	assert.Equal(t, 1, s.Snapshot().Committed)

	target := s.OnSliderComplete(4.4)
	assert.Equal(t, 4, target)
	settle(t, s)

	st := s.Snapshot()
	assert.False(t, st.Dragging)
	assert.Equal(t, 4, st.Page)
	assert.Equal(t, 4, st.Committed)
	assert.Equal(t, 1, spy.setCount(reader.PositionKey("b1")))
}

func TestSession_RestoreDuringDragKeepsPreview(t *testing.T) {
	mem := kvstore.NewMemory()
	require.NoError(t, mem.Set(context.Background(), reader.PositionKey("b1"), "30"))
	s, w := openSession(t, mem)

	assert.Equal(t, 5, s.OnSliderChange(5))
	s.OnSourceResolved(context.Background(), 40)

	st := s.Snapshot()
	assert.True(t, st.Dragging)
	assert.Equal(t, 5, st.Page, "restore must not move the slider preview")
	assert.Equal(t, 30, st.Committed)
	assert.True(t, st.Restored)

	assert.Equal(t, 6, s.OnSliderComplete(6))
	require.NoError(t, w.Settled(context.Background(), "b1"))
	v, _, _ := mem.Get(context.Background(), reader.PositionKey("b1"))
	assert.Equal(t, "6", v)
	assert.Equal(t, 6, s.Snapshot().Page)
}

func TestSession_JumpToBookmarkCommits(t *testing.T) {
	mem := kvstore.NewMemory()
	s, _ := openSession(t, mem)
	s.OnSourceResolved(context.Background(), 0)

	target, err := s.JumpToBookmark(37)
	require.NoError(t, err)
	assert.Equal(t, 37, target)
	settle(t, s)

	v, _ := stored(t, mem, reader.PositionKey("b1"))
	assert.Equal(t, "37", v)

	_, err = s.JumpToBookmark(0)
	var ve *reader.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestSession_AddBookmarkTrimsNote(t *testing.T) {
	mem := kvstore.NewMemory()
	s, _ := openSession(t, mem)
	s.OnSourceResolved(context.Background(), 100)
	require.NoError(t, s.OnPageChanged(12))

	b, err := s.AddBookmark("  the spice must flow \n")
	require.NoError(t, err)
	assert.Equal(t, reader.Bookmark{Page: 12, Note: "the spice must flow"}, b)
	settle(t, s)

	v, ok := stored(t, mem, reader.BookmarksKey("b1"))
	require.True(t, ok)
	list, err := reader.DecodeBookmarks(v)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.Equal(t, reader.Bookmark{Page: 12, Note: "the spice must flow"}, list[len(list)-1])
}

func TestSession_BlankNoteRejected(t *testing.T) {
	spy := newSpy(kvstore.NewMemory())
	s, _ := openSession(t, spy)
	s.OnSourceResolved(context.Background(), 10)

	for _, note := range []string{"", "   ", "\t\n"} {
		_, err := s.AddBookmark(note)
		var ve *reader.ValidationError
		require.True(t, errors.As(err, &ve), "note %q", note)
		assert.Equal(t, "Note Required", ve.Title)
	}
	settle(t, s)
	assert.Empty(t, s.Bookmarks())
	assert.Equal(t, 0, spy.setCount(reader.BookmarksKey("b1")))
}

func TestSession_AddThenDeleteRoundTrip(t *testing.T) {
	mem := kvstore.NewMemory()
	before := []reader.Bookmark{{Page: 3, Note: "prologue"}}
	enc, err := reader.EncodeBookmarks(before)
	require.NoError(t, err)
	require.NoError(t, mem.Set(context.Background(), reader.BookmarksKey("b1"), enc))

	s, _ := openSession(t, mem)
	s.OnSourceResolved(context.Background(), 10)
	require.Equal(t, before, s.Bookmarks())

	_, err = s.AddBookmark("note")
	require.NoError(t, err)
	require.Len(t, s.Bookmarks(), 2)

	var asked string
	confirm := reader.ConfirmFunc(func(_ context.Context, title, _ string) bool {
		asked = title
		return true
	})
	removed, err := s.DeleteBookmark(context.Background(), 1, confirm)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, "Delete Bookmark", asked)
	settle(t, s)

	assert.Equal(t, before, s.Bookmarks())
	v, _ := stored(t, mem, reader.BookmarksKey("b1"))
	assert.Equal(t, enc, v)
}

func TestSession_DeleteRequiresConfirmation(t *testing.T) {
	spy := newSpy(kvstore.NewMemory())
	s, _ := openSession(t, spy)
	s.OnSourceResolved(context.Background(), 10)
	_, err := s.AddBookmark("keep me")
	require.NoError(t, err)
	settle(t, s)

	decline := reader.ConfirmFunc(func(context.Context, string, string) bool { return false })
	removed, err := s.DeleteBookmark(context.Background(), 0, decline)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, s.Bookmarks(), 1)

	removed, err = s.DeleteBookmark(context.Background(), 0, nil)
	require.NoError(t, err)
	assert.False(t, removed, "a nil confirmer never approves")
	settle(t, s)
	assert.Equal(t, 1, spy.setCount(reader.BookmarksKey("b1")))
}

func TestSession_DeleteOutOfRange(t *testing.T) {
	s, _ := openSession(t, kvstore.NewMemory())
	_, err := s.DeleteBookmark(context.Background(), 0, reader.AlwaysConfirm)
	var ve *reader.ValidationError
	assert.True(t, errors.As(err, &ve))
	_, err = s.DeleteBookmark(context.Background(), -1, reader.AlwaysConfirm)
	assert.True(t, errors.As(err, &ve))
}

func TestSession_DuplicatePagesAllowed(t *testing.T) {
	s, _ := openSession(t, kvstore.NewMemory())
	s.OnSourceResolved(context.Background(), 10)
	_, err := s.AddBookmark("one")
	require.NoError(t, err)
	_, err = s.AddBookmark("two")
	require.NoError(t, err)
	list := s.Bookmarks()
	require.Len(t, list, 2)
	assert.Equal(t, list[0].Page, list[1].Page)
}

func TestSession_CorruptBookmarksLoadEmpty(t *testing.T) {
	mem := kvstore.NewMemory()
	require.NoError(t, mem.Set(context.Background(), reader.BookmarksKey("b1"), "{oops"))
	s, _ := openSession(t, mem)
	assert.Empty(t, s.Bookmarks())
	assert.NotNil(t, s.Snapshot().Bookmarks)
}

func TestSession_CloseFlushesHeldPage(t *testing.T) {
	mem := kvstore.NewMemory()
	s, _ := openSession(t, mem)

	require.NoError(t, s.OnPageChanged(8))
	_, ok := stored(t, mem, reader.PositionKey("b1"))
	assert.False(t, ok)

	s.Close()
	settle(t, s)
	v, ok := stored(t, mem, reader.PositionKey("b1"))
	require.True(t, ok)
	assert.Equal(t, "8", v)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "initializing", reader.Initializing.String())
	assert.Equal(t, "ready", reader.Ready.String())
	assert.Equal(t, "closed", reader.Closed.String())
}
