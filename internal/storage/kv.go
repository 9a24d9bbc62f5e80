package storage

import (
	"context"
	"errors"
)

// Common errors.
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("kv engine closed")
)

// KV defines the interface for the flat key-value engine underneath the
// ledger maps.
//
// Implementation requirements:
//   - Thread-safe: concurrent point operations must be safe (the ledger
//     additionally serializes multi-step mutations itself)
//   - Point-lookup consistent: a Set must be visible to the next Get
type KV interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound if the key doesn't exist.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores a key-value pair.
	Set(ctx context.Context, key, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Scan iterates over keys with a given prefix.
	// Callback returns false to stop iteration. Iteration order is
	// engine-defined.
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error

	// Stats returns engine statistics.
	Stats(ctx context.Context) (*KVStats, error)

	// Close gracefully shuts down the engine.
	Close() error
}

// KVStats contains storage engine statistics.
type KVStats struct {
	// TotalKeys is the approximate number of keys.
	TotalKeys uint64

	// TotalSize is the total disk usage in bytes (0 for memory engines).
	TotalSize uint64

	// LSMSize is the LSM tree size (Badger).
	LSMSize uint64

	// ValueLogSize is the value log size (Badger).
	ValueLogSize uint64
}
