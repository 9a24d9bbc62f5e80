// Package snapshot provides point-in-time ledger state snapshots.
//
// A snapshot is a single file holding the full ledger state: every token
// with its owner and outstanding approval, every balance counter, and
// every operator-approval entry. Files carry magic bytes, a JSON header,
// an optionally encrypted JSON state block, and a SHA-256 checksum
// trailer. Load walks snapshots newest-first and skips corrupted files.
//
// Snapshots are operator-facing backups. The Badger engine is durable on
// its own; snapshots exist for off-host copies and for seeding a fresh
// ledger from a known state.
package snapshot
