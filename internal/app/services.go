package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/blackwell-systems/shelfread/internal/acquire"
	"github.com/blackwell-systems/shelfread/internal/cache"
	"github.com/blackwell-systems/shelfread/internal/catalog"
	"github.com/blackwell-systems/shelfread/internal/kvstore"
	"github.com/blackwell-systems/shelfread/internal/logging"
	"github.com/blackwell-systems/shelfread/internal/reader"
	"github.com/blackwell-systems/shelfread/internal/render"
	"github.com/blackwell-systems/shelfread/internal/tui"
)

var (
	log      *slog.Logger
	store    kvstore.Store
	writer   *reader.Writer
	cacheMgr *cache.Manager
	resolver *acquire.Resolver
	viewer   *render.Viewer
	books    []catalog.Book
)

// openServices wires config into the store, catalog and acquisition layers.
func openServices(ctx context.Context) error {
	log = logging.New(os.Stderr)

	var err error
	store, err = kvstore.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}
	writer = reader.NewWriter(store, log, cfg.Store.EffectiveTimeout())

	loader := catalog.NewLoader(cfg.Catalog, &http.Client{Timeout: 30 * time.Second}, log)
	books = loader.Load(ctx)

	cacheMgr = cache.New(cfg.Acquire.DocumentsDir)
	resolver = acquire.NewResolver(cfg.Acquire, cacheMgr, acquire.NewClient(nil, cfg.Acquire.Timeout), log)
	viewer = render.NewViewer(cfg.Viewer.App)
	return nil
}

// closeServices drains queued reading-state writes and closes the store.
func closeServices() {
	if writer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := writer.Close(ctx); err != nil {
			warn("Some reading state may not have been saved: %v", err)
		}
		cancel()
	}
	if store != nil {
		if err := store.Close(); err != nil && !errors.Is(err, kvstore.ErrClosed) {
			log.Warn("closing store failed", "err", err)
		}
	}
}

func tuiDeps() tui.Deps {
	return tui.Deps{
		Books:    books,
		Resolver: resolver,
		Writer:   writer,
		Viewer:   viewer,
		Log:      log,
		Images:   tui.DetectImageProtocol(),
	}
}

// findBook looks a book up in the loaded catalog.
func findBook(id string) (*catalog.Book, error) {
	if b := catalog.ByID(books, id); b != nil {
		return b, nil
	}
	if len(books) == 0 {
		return nil, fmt.Errorf("book %q not found (the catalog is empty, check catalog.source)", id)
	}
	return nil, fmt.Errorf("book %q not found in catalog", id)
}
