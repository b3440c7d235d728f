package reader_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/shelfread/internal/kvstore"
	"github.com/blackwell-systems/shelfread/internal/logging"
	"github.com/blackwell-systems/shelfread/internal/reader"
)

// orderStore records the order values were written in.
type orderStore struct {
	kvstore.Store
	mu     sync.Mutex
	values []string
}

func (s *orderStore) Set(ctx context.Context, key, value string) error {
	time.Sleep(time.Millisecond)
	s.mu.Lock()
	s.values = append(s.values, value)
	s.mu.Unlock()
	return s.Store.Set(ctx, key, value)
}

type brokenStore struct{ kvstore.Store }

var errDiskFull = errors.New("disk full")

func (brokenStore) Set(context.Context, string, string) error { return errDiskFull }

func TestWriter_CompletesInIssueOrder(t *testing.T) {
	st := &orderStore{Store: kvstore.NewMemory()}
	w := reader.NewWriter(st, logging.Discard(), 0)

	var want []string
	for i := 0; i < 20; i++ {
		v := strconv.Itoa(i)
		want = append(want, v)
		w.Set("b1", "b1-lastPage", v)
	}
	require.NoError(t, w.Settled(context.Background(), "b1"))

	st.mu.Lock()
	defer st.mu.Unlock()
	assert.Equal(t, want, st.values)
}

func TestWriter_SettledWithNothingQueued(t *testing.T) {
	w := reader.NewWriter(kvstore.NewMemory(), logging.Discard(), 0)
	assert.NoError(t, w.Settled(context.Background(), "never-written"))
}

func TestWriter_SettledHonoursContext(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	w := reader.NewWriter(gatedStore{Store: kvstore.NewMemory(), gate: gate}, logging.Discard(), 0)
	w.Set("b1", "k", "v")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Settled(ctx, "b1"), context.DeadlineExceeded)
}

type gatedStore struct {
	kvstore.Store
	gate chan struct{}
}

func (g gatedStore) Set(ctx context.Context, key, value string) error {
	<-g.gate
	return g.Store.Set(ctx, key, value)
}

func TestWriter_FailureIsLoggedPersistenceError(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	w := reader.NewWriter(brokenStore{kvstore.NewMemory()}, log, 0)

	err := <-w.Set("b1", "b1-lastPage", "3")
	var pe *reader.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "set", pe.Op)
	assert.Equal(t, "b1-lastPage", pe.Key)
	assert.ErrorIs(t, err, errDiskFull)
	assert.Contains(t, logs.String(), "persisting reading state failed")
}

func TestWriter_Remove(t *testing.T) {
	mem := kvstore.NewMemory()
	require.NoError(t, mem.Set(context.Background(), "k", "v"))
	w := reader.NewWriter(mem, logging.Discard(), 0)

	require.NoError(t, <-w.Remove("b1", "k"))
	_, ok, err := mem.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriter_CloseDrainsAndRejects(t *testing.T) {
	mem := kvstore.NewMemory()
	w := reader.NewWriter(mem, logging.Discard(), 0)
	for i := 0; i < 5; i++ {
		w.Set("b"+strconv.Itoa(i), "k"+strconv.Itoa(i), "v")
	}
	require.NoError(t, w.Close(context.Background()))
	assert.Equal(t, 5, mem.Len())

	assert.ErrorIs(t, <-w.Set("b1", "late", "v"), reader.ErrWriterClosed)
}

func TestRecords(t *testing.T) {
	assert.Equal(t, "book-1-lastPage", reader.PositionKey("book-1"))
	assert.Equal(t, "book-1-bookmarks", reader.BookmarksKey("book-1"))

	for in, want := range map[string]int{"42": 42, " 7 ": 7, "1": 1} {
		got, ok := reader.ParsePage(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "0", "-3", "4.5", "abc"} {
		_, ok := reader.ParsePage(in)
		assert.False(t, ok, in)
	}

	enc, err := reader.EncodeBookmarks(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", enc)

	enc, err = reader.EncodeBookmarks([]reader.Bookmark{{Page: 2, Note: "x"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"page":2,"note":"x"}]`, enc)

	list, err := reader.DecodeBookmarks("null")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestLoadPosition(t *testing.T) {
	ctx := context.Background()
	mem := kvstore.NewMemory()

	_, ok, err := reader.LoadPosition(ctx, mem, "b1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mem.Set(ctx, reader.PositionKey("b1"), "9"))
	page, ok, err := reader.LoadPosition(ctx, mem, "b1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 9, page)

	require.NoError(t, mem.Close())
	_, _, err = reader.LoadPosition(ctx, mem, "b1")
	var pe *reader.PersistenceError
	assert.True(t, errors.As(err, &pe))
	assert.ErrorIs(t, err, kvstore.ErrClosed)
}
