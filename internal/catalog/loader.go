package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/blackwell-systems/shelfread/internal/config"
)

// Loader produces the catalog from the configured source.
type Loader struct {
	cfg    config.CatalogConfig
	client *http.Client
	log    *slog.Logger
}

// NewLoader creates a loader for cfg. client may be nil.
func NewLoader(cfg config.CatalogConfig, client *http.Client, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{cfg: cfg, client: client, log: log}
}

// LoadStrict returns the catalog, or the *LoadError that prevented it.
func (l *Loader) LoadStrict(ctx context.Context) ([]Book, error) {
	switch l.cfg.Source {
	case config.CatalogBundled, "":
		return Bundled()
	case config.CatalogFile:
		return Load(l.cfg.Path)
	case config.CatalogRemote:
		return Fetch(ctx, l.client, l.cfg.URL)
	default:
		return nil, &LoadError{Source: l.cfg.Source, Err: fmt.Errorf("unknown catalog source")}
	}
}

// Load returns the catalog. A load failure is logged and yields an empty
// catalog; it is never shown to the user.
func (l *Loader) Load(ctx context.Context) []Book {
	books, err := l.LoadStrict(ctx)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			l.log.Warn("catalog unavailable", "source", le.Source, "err", le.Err)
		} else {
			l.log.Warn("catalog unavailable", "err", err)
		}
		return []Book{}
	}
	return books
}
