// Package server exposes the catalog and per-book reading state over HTTP
// so another device can pick up where the terminal left off.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/blackwell-systems/shelfread/internal/catalog"
	"github.com/blackwell-systems/shelfread/internal/config"
	"github.com/blackwell-systems/shelfread/internal/reader"
)

// Options configure a Server.
type Options struct {
	Books          []catalog.Book
	Writer         *reader.Writer
	ViewerEndpoint string
	RateLimit      int // requests per minute per IP; 0 disables
	Log            *slog.Logger
}

// Server serves the reading API.
type Server struct {
	books    []catalog.Book
	writer   *reader.Writer
	endpoint string
	limit    int
	log      *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	router chi.Router
}

// New builds a server and its routes.
func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	endpoint := opts.ViewerEndpoint
	if endpoint == "" {
		endpoint = config.DefaultViewerEndpoint
	}
	books := opts.Books
	if books == nil {
		books = []catalog.Book{}
	}
	s := &Server{
		books:    books,
		writer:   opts.Writer,
		endpoint: endpoint,
		limit:    opts.RateLimit,
		log:      log,
		locks:    make(map[string]*sync.Mutex),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	if s.limit > 0 {
		r.Use(httprate.LimitByIP(s.limit, time.Minute))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/books", func(r chi.Router) {
		r.Get("/", s.listBooks)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.bookCtx)
			r.Get("/", s.getBook)
			r.Get("/position", s.getPosition)
			r.Put("/position", s.putPosition)
			r.Get("/bookmarks", s.listBookmarks)
			r.Post("/bookmarks", s.addBookmark)
			r.Delete("/bookmarks/{index}", s.deleteBookmark)
			r.Get("/viewer", s.viewer)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, r, http.StatusNotFound, "not_found", "No such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})
	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// bookLock serializes read-modify-write of one book's bookmark list.
func (s *Server) bookLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.locks[id]
	if m == nil {
		m = &sync.Mutex{}
		s.locks[id] = m
	}
	return m
}
