package store

import (
	"context"
	"time"
)

// Store is the external key-value tier consumed by the cache.
//
// Implementations must make Get return (nil, nil) for an absent key so the
// caller can distinguish "not cached" from "store broken".
type Store interface {
	// Connect establishes or verifies connectivity. Ordinary
	// unavailability is reported as false, not as an error.
	Connect(ctx context.Context) bool

	// Get returns the raw value for key, or (nil, nil) when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys. Deleting absent keys is not an error.
	Delete(ctx context.Context, keys ...string) error

	// ScanKeys enumerates keys matching the given glob-style pattern.
	ScanKeys(ctx context.Context, match string) ([]string, error)

	// Info returns server diagnostics for status endpoints.
	Info(ctx context.Context) (map[string]string, error)

	// Close releases client resources.
	Close() error
}
