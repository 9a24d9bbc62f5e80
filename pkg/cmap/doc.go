// Package cmap provides a concurrent-safe sharded map with string keys.
//
// Sharding reduces lock contention under concurrent access. Keys are
// distributed across shards with murmur3, which gives a stable, well
// distributed placement for the short prefixed keys the storage layer
// produces.
package cmap
