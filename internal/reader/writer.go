package reader

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/blackwell-systems/shelfread/internal/kvstore"
)

// ErrWriterClosed is the result of a write submitted after Writer.Close.
var ErrWriterClosed = errors.New("writer is closed")

// Writer serializes store writes per book. Each book id has its own FIFO
// lane drained by one goroutine, so writes for a book complete in the
// order they were issued while different books proceed independently.
type Writer struct {
	store   kvstore.Store
	log     *slog.Logger
	timeout time.Duration

	mu     sync.Mutex
	lanes  map[string]*lane
	closed bool
	idle   *sync.Cond
	active int
}

type job struct {
	seq    uint64
	key    string
	value  string
	remove bool
	result chan error
}

type lane struct {
	queue   []job
	issued  uint64
	done    uint64
	running bool
	waiters []waiter
}

type waiter struct {
	seq uint64
	ch  chan struct{}
}

// NewWriter creates a writer over store. timeout bounds each write; zero
// leaves it to the store.
func NewWriter(store kvstore.Store, log *slog.Logger, timeout time.Duration) *Writer {
	if log == nil {
		log = slog.Default()
	}
	w := &Writer{store: store, log: log, timeout: timeout, lanes: make(map[string]*lane)}
	w.idle = sync.NewCond(&w.mu)
	return w
}

// Store returns the underlying store, for reads.
func (w *Writer) Store() kvstore.Store { return w.store }

// Set queues key=value on the book's lane. The returned channel receives
// the outcome once; callers are free to ignore it.
func (w *Writer) Set(bookID, key, value string) <-chan error {
	return w.submit(bookID, job{key: key, value: value})
}

// Remove queues deletion of key on the book's lane.
func (w *Writer) Remove(bookID, key string) <-chan error {
	return w.submit(bookID, job{key: key, remove: true})
}

func (w *Writer) submit(bookID string, j job) <-chan error {
	j.result = make(chan error, 1)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		j.result <- ErrWriterClosed
		return j.result
	}
	l := w.lanes[bookID]
	if l == nil {
		l = &lane{}
		w.lanes[bookID] = l
	}
	l.issued++
	j.seq = l.issued
	l.queue = append(l.queue, j)
	if !l.running {
		l.running = true
		w.active++
		go w.drain(l)
	}
	return j.result
}

func (w *Writer) drain(l *lane) {
	for {
		w.mu.Lock()
		if len(l.queue) == 0 {
			l.running = false
			w.active--
			if w.active == 0 {
				w.idle.Broadcast()
			}
			w.mu.Unlock()
			return
		}
		j := l.queue[0]
		l.queue = l.queue[1:]
		w.mu.Unlock()

		err := w.exec(j)
		j.result <- err

		w.mu.Lock()
		l.done = j.seq
		kept := l.waiters[:0]
		for _, wt := range l.waiters {
			if wt.seq <= l.done {
				close(wt.ch)
			} else {
				kept = append(kept, wt)
			}
		}
		l.waiters = kept
		w.mu.Unlock()
	}
}

func (w *Writer) exec(j job) error {
	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	var err error
	op := "set"
	if j.remove {
		op = "remove"
		err = w.store.Remove(ctx, j.key)
	} else {
		err = w.store.Set(ctx, j.key, j.value)
	}
	if err != nil {
		perr := &PersistenceError{Op: op, Key: j.key, Err: err}
		w.log.Warn("persisting reading state failed", "err", perr)
		return perr
	}
	return nil
}

// Settled blocks until every write queued for bookID before the call has
// completed, or ctx is done.
func (w *Writer) Settled(ctx context.Context, bookID string) error {
	w.mu.Lock()
	l := w.lanes[bookID]
	if l == nil || l.done >= l.issued {
		w.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	l.waiters = append(l.waiters, waiter{seq: l.issued, ch: ch})
	w.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting writes and waits for queued ones to finish.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.mu.Lock()
		for w.active > 0 {
			w.idle.Wait()
		}
		w.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
