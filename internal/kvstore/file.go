package kvstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blackwell-systems/shelfread/internal/util"
	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

const lockRetry = 10 * time.Millisecond

// File keeps the whole key space in one YAML document. Several processes
// may share the document (the TUI and `serve`): mutations take an exclusive
// lock on `<path>.lock`, re-read the document, change the one key and
// rewrite it atomically. Reads pick up other writers' changes when the
// file on disk has been replaced.
type File struct {
	path   string
	lock   *flock.Flock
	mu     sync.Mutex
	data   map[string]string
	stat   os.FileInfo // of the document data was read from, nil if absent
	closed bool
}

// OpenFile loads the store at path. A missing file is an empty store.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("kvstore: file backend needs a path")
	}
	f := &File{path: path, lock: flock.New(path + ".lock"), data: map[string]string{}}
	if err := f.reloadLocked(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", false, ErrClosed
	}
	if f.changedLocked() {
		if err := f.reloadLocked(); err != nil {
			return "", false, err
		}
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *File) Set(ctx context.Context, key, value string) error {
	return f.update(ctx, func(data map[string]string) bool {
		if cur, ok := data[key]; ok && cur == value {
			return false
		}
		data[key] = value
		return true
	})
}

func (f *File) Remove(ctx context.Context, key string) error {
	return f.update(ctx, func(data map[string]string) bool {
		if _, ok := data[key]; !ok {
			return false
		}
		delete(data, key)
		return true
	})
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return f.lock.Close()
}

// update applies fn to the current on-disk document while holding the
// file lock and writes the result back when fn reports a change. The
// in-memory copy is only replaced once the write succeeded.
func (f *File) update(ctx context.Context, fn func(map[string]string) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	if err := util.EnsureDir(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("creating store dir: %w", err)
	}
	locked, err := f.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("locking store: %w", err)
	}
	if !locked {
		return fmt.Errorf("locking store: %s is held by another process", f.lock.Path())
	}
	defer func() { _ = f.lock.Unlock() }()

	data, stat, err := readDocument(f.path)
	if err != nil {
		return err
	}
	if !fn(data) {
		f.data, f.stat = data, stat
		return nil
	}

	raw, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}
	if err := util.WriteFileAtomic(f.path, raw, 0600); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}
	f.data = data
	f.stat, _ = os.Stat(f.path)
	return nil
}

// changedLocked reports whether the document on disk is not the one f.data
// was read from. Writers replace the file by rename, so a new inode, size
// or mtime all mean new content.
func (f *File) changedLocked() bool {
	st, err := os.Stat(f.path)
	if err != nil {
		return f.stat != nil
	}
	if f.stat == nil {
		return true
	}
	return !os.SameFile(f.stat, st) || !st.ModTime().Equal(f.stat.ModTime()) || st.Size() != f.stat.Size()
}

func (f *File) reloadLocked() error {
	data, stat, err := readDocument(f.path)
	if err != nil {
		return err
	}
	f.data, f.stat = data, stat
	return nil
}

func readDocument(path string) (map[string]string, os.FileInfo, error) {
	data := map[string]string{}
	fh, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil, nil
		}
		return nil, nil, fmt.Errorf("reading store: %w", err)
	}
	defer fh.Close()

	st, err := fh.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("reading store: %w", err)
	}
	raw, err := io.ReadAll(fh)
	if err != nil {
		return nil, nil, fmt.Errorf("reading store: %w", err)
	}
	if len(raw) == 0 {
		return data, st, nil
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, nil, fmt.Errorf("parsing store %s: %w", path, err)
	}
	if data == nil {
		data = map[string]string{}
	}
	return data, st, nil
}
