package acquire

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/blackwell-systems/shelfread/internal/cache"
	"github.com/blackwell-systems/shelfread/internal/catalog"
	"github.com/blackwell-systems/shelfread/internal/config"
)

// Kind distinguishes a local file from a remote viewer address.
type Kind int

const (
	Local Kind = iota
	Remote
)

func (k Kind) String() string {
	if k == Remote {
		return "remote"
	}
	return "local"
}

// Source is what the viewer is given for a book.
type Source struct {
	Kind Kind
	Path string // set for Local
	URL  string // set for Remote
}

// Target returns the path or URL the viewer should open.
func (s Source) Target() string {
	if s.Kind == Remote {
		return s.URL
	}
	return s.Path
}

// Resolver turns a catalog book into a viewable source.
type Resolver struct {
	cache    *cache.Manager
	client   *Client
	mode     string
	endpoint string
	log      *slog.Logger

	mu       sync.RWMutex
	progress ProgressFunc

	group   singleflight.Group
	flights map[string]*flight // guarded by mu
}

// flight is one shared download. It runs detached from any single caller
// and is cancelled when the last caller waiting on it goes away.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewResolver creates a resolver for cfg that stores documents in c.
func NewResolver(cfg config.AcquireConfig, c *cache.Manager, client *Client, log *slog.Logger) *Resolver {
	if client == nil {
		client = NewClient(nil, cfg.Timeout)
	}
	if log == nil {
		log = slog.Default()
	}
	endpoint := cfg.ViewerEndpoint
	if endpoint == "" {
		endpoint = config.DefaultViewerEndpoint
	}
	mode := cfg.Mode
	if mode == "" {
		mode = config.ModeLocal
	}
	return &Resolver{
		cache:    c,
		client:   client,
		mode:     mode,
		endpoint: endpoint,
		log:      log,
		flights:  make(map[string]*flight),
	}
}

// Mode returns the configured acquisition mode.
func (r *Resolver) Mode() string { return r.mode }

// Cache returns the document cache the resolver writes to.
func (r *Resolver) Cache() *cache.Manager { return r.cache }

// SetProgress installs a download progress hook; nil removes it.
func (r *Resolver) SetProgress(fn ProgressFunc) {
	r.mu.Lock()
	r.progress = fn
	r.mu.Unlock()
}

// Resolve acquires book in the configured mode.
func (r *Resolver) Resolve(ctx context.Context, book catalog.Book) (Source, error) {
	return r.ResolveMode(ctx, book, r.mode)
}

// ResolveMode acquires book in the given mode. In local mode a cached
// document is returned without network access; otherwise it is downloaded
// once, however many callers ask for it at the same time. Stream mode
// never downloads.
func (r *Resolver) ResolveMode(ctx context.Context, book catalog.Book, mode string) (Source, error) {
	if mode == config.ModeStream {
		return r.stream(book)
	}

	if err := cache.ValidID(book.ID); err != nil {
		return Source{}, &DownloadError{BookID: book.ID, URL: book.URL, Err: err}
	}
	if r.cache.Exists(book.ID) {
		r.log.Debug("cache hit", "book", book.ID)
		return Source{Kind: Local, Path: r.cache.Path(book.ID)}, nil
	}

	// A caller can join a flight that every earlier caller has already
	// abandoned; it then sees that flight's cancellation and tries again.
	for attempt := 0; ; attempt++ {
		path, err := r.wait(ctx, book)
		if err != nil && attempt == 0 && ctx.Err() == nil && errors.Is(err, context.Canceled) {
			continue
		}
		if err != nil {
			return Source{}, err
		}
		return Source{Kind: Local, Path: path}, nil
	}
}

// wait joins (or starts) the download of book and blocks until it ends or
// ctx is done.
func (r *Resolver) wait(ctx context.Context, book catalog.Book) (string, error) {
	fl := r.join(ctx, book.ID)
	defer r.leave(book.ID, fl)

	ch := r.group.DoChan(book.ID, func() (interface{}, error) {
		return r.download(fl.ctx, book)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *Resolver) join(ctx context.Context, bookID string) *flight {
	r.mu.Lock()
	defer r.mu.Unlock()
	fl, ok := r.flights[bookID]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		fl = &flight{ctx: fctx, cancel: cancel}
		r.flights[bookID] = fl
	}
	fl.waiters++
	return fl
}

func (r *Resolver) leave(bookID string, fl *flight) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fl.waiters--
	if fl.waiters > 0 {
		return
	}
	fl.cancel()
	if r.flights[bookID] == fl {
		delete(r.flights, bookID)
	}
}

func (r *Resolver) stream(book catalog.Book) (Source, error) {
	u, err := ViewerURL(r.endpoint, book.URL)
	if err != nil {
		return Source{}, &DownloadError{BookID: book.ID, URL: book.URL, Err: err}
	}
	return Source{Kind: Remote, URL: u}, nil
}

func (r *Resolver) download(ctx context.Context, book catalog.Book) (string, error) {
	// A flight that finished just before this one started already stored it.
	if r.cache.Exists(book.ID) {
		return r.cache.Path(book.ID), nil
	}
	if book.URL == "" {
		return "", &DownloadError{BookID: book.ID, Err: ErrNoContentURL}
	}

	r.log.Info("downloading", "book", book.ID, "url", book.URL)
	body, size, err := r.client.Get(ctx, book.URL)
	if err != nil {
		return "", &DownloadError{BookID: book.ID, URL: book.URL, Err: err}
	}
	defer func() { _ = body.Close() }()

	r.mu.RLock()
	fn := r.progress
	r.mu.RUnlock()

	path, err := r.cache.Store(book.ID, newProgressReader(body, book.ID, size, fn), book.SHA256)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = errors.Join(ctxErr, err)
		}
		return "", &DownloadError{BookID: book.ID, URL: book.URL, Err: err}
	}
	r.log.Info("downloaded", "book", book.ID, "path", path)
	return path, nil
}
