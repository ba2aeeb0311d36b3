// Package kv defines the flat key-value capability the hydration store is
// built on, with an in-memory implementation for tests and a SQLite
// implementation for the CLI.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value
var ErrNotFound = errors.New("kv: key not found")

// Store is a flat namespace of byte values addressed by string keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys returns every key beginning with prefix, sorted ascending.
	// An empty prefix lists the whole namespace.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Locker is implemented by stores shared between processes. WithLock runs
// fn while holding an exclusive write lock on the whole store.
type Locker interface {
	WithLock(ctx context.Context, fn func() error) error
}
