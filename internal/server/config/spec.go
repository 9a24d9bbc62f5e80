package config

import (
	"time"

	"github.com/nftmesh/nftmesh-go/internal/storage"
)

// ServerConfig is the root configuration for nftmesh-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Storage  StorageSection  `koanf:"storage"`
	Snapshot SnapshotSection `koanf:"snapshot"`
	Security SecuritySection `koanf:"security"`
	Events   EventsSection   `koanf:"events"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP      HTTPConfig      `koanf:"http"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	TLSCertFile     string        `koanf:"tls_cert_file"`
	TLSKeyFile      string        `koanf:"tls_key_file"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// RateLimitConfig configures per-client HTTP rate limiting.
// RPS <= 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

// StorageSection configures the KV engine backing the ledger.
type StorageSection struct {
	// Engine selects the KV engine: "memory" or "badger".
	Engine  string        `koanf:"engine"`
	DataDir string        `koanf:"data_dir"`
	Badger  BadgerSection `koanf:"badger"`
}

// BadgerSection exposes the Badger tuning knobs that operators
// actually turn. Everything else keeps the storage package defaults.
type BadgerSection struct {
	GCInterval  time.Duration `koanf:"gc_interval"`
	GCThreshold float64       `koanf:"gc_threshold"`
	CacheSizeMB int64         `koanf:"cache_size_mb"`
	SyncWrites  bool          `koanf:"sync_writes"`
}

// KVConfig converts the storage section into a storage.KVConfig.
func (s *StorageSection) KVConfig() storage.KVConfig {
	cfg := storage.DefaultKVConfig(s.DataDir)
	cfg.Engine = s.Engine
	if s.Badger.GCInterval > 0 {
		cfg.Badger.GCInterval = s.Badger.GCInterval.String()
	}
	if s.Badger.GCThreshold > 0 {
		cfg.Badger.GCThreshold = s.Badger.GCThreshold
	}
	if s.Badger.CacheSizeMB > 0 {
		cfg.Badger.CacheSize = s.Badger.CacheSizeMB << 20
	}
	cfg.Badger.SyncWrites = s.Badger.SyncWrites
	return cfg
}

// SnapshotSection configures ledger snapshots.
type SnapshotSection struct {
	// Dir is the snapshot directory. Empty disables snapshots.
	Dir string `koanf:"dir"`

	// Interval between automatic snapshots. Zero disables the
	// periodic snapshot loop; manual snapshots via the admin API
	// still work.
	Interval time.Duration `koanf:"interval"`

	RetentionCount int `koanf:"retention_count"`
	RetentionDays  int `koanf:"retention_days"`
}

// SecuritySection configures security settings.
type SecuritySection struct {
	// EncryptionKey is a hex-encoded snapshot encryption key.
	// Mutually exclusive with EncryptionPassphrase.
	EncryptionKey string `koanf:"encryption_key"`

	// EncryptionPassphrase derives a snapshot encryption key via
	// Argon2id. Mutually exclusive with EncryptionKey.
	EncryptionPassphrase string `koanf:"encryption_passphrase"`

	// TLSCAFile is an optional CA bundle; when set the HTTP server
	// requires client certificates signed by it.
	TLSCAFile string `koanf:"tls_ca_file"`
}

// EventsSection configures the in-memory event ring.
type EventsSection struct {
	RingCapacity int `koanf:"ring_capacity"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
