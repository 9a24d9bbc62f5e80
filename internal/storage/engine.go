package storage

import (
	"fmt"
	"log/slog"
)

// Engine names accepted by Open.
const (
	EngineMemory = "memory"
	EngineBadger = "badger"
)

// KVConfig configures a KV engine.
type KVConfig struct {
	// Engine selects the engine type ("memory" or "badger").
	// Default: "memory"
	Engine string

	// Dir is the storage directory (badger only).
	Dir string

	// Badger-specific configuration.
	Badger BadgerConfig
}

// BadgerConfig contains Badger-specific tuning parameters.
type BadgerConfig struct {
	// GCInterval is the interval between automatic GC runs.
	// Default: 10m
	GCInterval string

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Higher values trigger GC more aggressively.
	// Default: 0.5
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 64MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 1GB
	ValueLogFileSize int64

	// NumMemtables is the number of memtables.
	// Default: 2
	NumMemtables int

	// NumLevelZeroTables is the number of Level 0 tables before compaction.
	// Default: 5
	NumLevelZeroTables int

	// NumLevelZeroTablesStall is the number of Level 0 tables that
	// triggers a write stall.
	// Default: 10
	NumLevelZeroTablesStall int

	// SyncWrites enables fsync after each write.
	// Default: true (the ledger has no WAL of its own)
	SyncWrites bool

	// DetectConflicts enables transaction conflict detection.
	// Default: false (the ledger serializes mutations itself)
	DetectConflicts bool
}

// DefaultKVConfig returns the default KV configuration.
func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{
		Engine: EngineMemory,
		Dir:    dir,
		Badger: DefaultBadgerConfig(),
	}
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:              "10m",
		GCThreshold:             0.5,
		CacheSize:               64 << 20,
		ValueLogFileSize:        1 << 30,
		NumMemtables:            2,
		NumLevelZeroTables:      5,
		NumLevelZeroTablesStall: 10,
		SyncWrites:              true,
		DetectConflicts:         false,
	}
}

// Open creates the KV engine named by cfg.Engine.
func Open(cfg KVConfig, logger *slog.Logger) (KV, error) {
	switch cfg.Engine {
	case "", EngineMemory:
		return NewMemoryEngine(), nil
	case EngineBadger:
		return NewBadgerEngine(cfg, logger)
	default:
		return nil, fmt.Errorf("storage: unknown engine %q", cfg.Engine)
	}
}
