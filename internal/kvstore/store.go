// Package kvstore is the string-keyed, string-valued persistent store that
// reading state lives in. Keys are namespaced by the caller (book id
// prefixes); the store itself knows nothing about books.
package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/blackwell-systems/shelfread/internal/config"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("kvstore: store is closed")

// Store is a durable key-value store. Implementations are safe for
// concurrent use. Get reports a missing key with ok == false and a nil
// error; Remove of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Open returns the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.StoreFile, "":
		return OpenFile(cfg.Path)
	case config.StoreMemory:
		return NewMemory(), nil
	case config.StorePostgres:
		return OpenPostgres(ctx, cfg.DSN, cfg.EffectiveTimeout())
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
