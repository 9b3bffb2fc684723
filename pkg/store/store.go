// Package store provides the durable key-value checkpoint store backing HITL
// sessions. Keys carry independent TTLs; the production implementation is
// Redis, constructed explicitly at startup and closed at shutdown.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key is absent or expired.
var ErrNotFound = errors.New("store: key not found")

// Store is the checkpoint store capability consumed by the HITL coordinator.
type Store interface {
	// Get returns the value at key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes value at key with the given expiry. A zero ttl persists the
	// key without expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes the given keys and reports how many existed.
	Delete(ctx context.Context, keys ...string) (int64, error)

	// ScanPrefix returns all keys beginning with prefix.
	ScanPrefix(ctx context.Context, prefix string) ([]string, error)

	// TTL returns the remaining lifetime of key.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
