package kvstore

import (
	"context"
	"sync/atomic"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is a process-local store. It survives nothing and is meant for
// tests, demos and `--store memory` throwaway sessions.
type Memory struct {
	c      *gocache.Cache
	closed atomic.Bool
}

// NewMemory returns an empty in-memory store whose entries never expire.
func NewMemory() *Memory {
	return &Memory{c: gocache.New(gocache.NoExpiration, 0)}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := m.check(ctx); err != nil {
		return "", false, err
	}
	v, ok := m.c.Get(key)
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	m.c.Set(key, value, gocache.NoExpiration)
	return nil
}

func (m *Memory) Remove(ctx context.Context, key string) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	m.c.Delete(key)
	return nil
}

func (m *Memory) Close() error {
	m.closed.Store(true)
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	return m.c.ItemCount()
}

func (m *Memory) check(ctx context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}
