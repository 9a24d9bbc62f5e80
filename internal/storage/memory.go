package storage

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/nftmesh/nftmesh-go/pkg/cmap"
)

// MemoryEngine implements KV over a sharded in-memory map. State is lost
// on process exit; it is the default engine for tests and the fast path
// for ephemeral deployments.
type MemoryEngine struct {
	items  *cmap.Map[[]byte]
	closed atomic.Bool
}

// NewMemoryEngine creates a new in-memory KV engine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{
		items: cmap.New[[]byte](),
	}
}

// Get retrieves a value by key.
func (e *MemoryEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	value, ok := e.items.Get(string(key))
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a key-value pair.
func (e *MemoryEngine) Set(ctx context.Context, key, value []byte) error {
	if e.closed.Load() {
		return ErrClosed
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	e.items.Set(string(key), stored)
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (e *MemoryEngine) Delete(ctx context.Context, key []byte) error {
	if e.closed.Load() {
		return ErrClosed
	}
	e.items.Delete(string(key))
	return nil
}

// Scan iterates over keys with a given prefix. Iteration order is
// unspecified.
func (e *MemoryEngine) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	if e.closed.Load() {
		return ErrClosed
	}
	p := string(prefix)
	cont := true
	e.items.Range(func(key string, value []byte) bool {
		if !strings.HasPrefix(key, p) {
			return true
		}
		out := make([]byte, len(value))
		copy(out, value)
		cont = fn([]byte(key), out)
		return cont
	})
	return nil
}

// Stats returns engine statistics. Memory engines report key count only.
func (e *MemoryEngine) Stats(ctx context.Context) (*KVStats, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	return &KVStats{
		TotalKeys: uint64(e.items.Count()),
	}, nil
}

// Close marks the engine closed. Subsequent operations fail with ErrClosed.
func (e *MemoryEngine) Close() error {
	e.closed.Store(true)
	e.items.Clear()
	return nil
}
