package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS shelfread_kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// Postgres stores keys in a single table, for installations that share
// reading state between machines through `shelfread serve`.
type Postgres struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// OpenPostgres connects, pings and makes sure the table exists.
func OpenPostgres(ctx context.Context, dsn string, timeout time.Duration) (*Postgres, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	p := NewPostgres(db, timeout)

	timeoutCtx, cancel := p.withTimeout(ctx)
	defer cancel()
	if err := db.Ping(timeoutCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := db.Exec(timeoutCtx, createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating kv table: %w", err)
	}
	return p, nil
}

// NewPostgres wraps an existing pool. The table must already exist.
func NewPostgres(db *pgxpool.Pool, timeout time.Duration) *Postgres {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Postgres{db: db, timeout: timeout}
}

func (p *Postgres) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.timeout)
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	const q = `SELECT value FROM shelfread_kv WHERE key = $1`
	timeoutCtx, cancel := p.withTimeout(ctx)
	defer cancel()

	var value string
	err := p.db.QueryRow(timeoutCtx, q, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO shelfread_kv (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	timeoutCtx, cancel := p.withTimeout(ctx)
	defer cancel()
	if _, err := p.db.Exec(timeoutCtx, q, key, value); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (p *Postgres) Remove(ctx context.Context, key string) error {
	const q = `DELETE FROM shelfread_kv WHERE key = $1`
	timeoutCtx, cancel := p.withTimeout(ctx)
	defer cancel()
	if _, err := p.db.Exec(timeoutCtx, q, key); err != nil {
		return fmt.Errorf("kv remove %q: %w", key, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}
