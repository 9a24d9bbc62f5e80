package config

import (
	"time"

	"github.com/nftmesh/nftmesh-go/internal/notify"
	"github.com/nftmesh/nftmesh-go/internal/storage"
)

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:5480"
	DefaultShutdownTimeout = 10 * time.Second

	DefaultRateLimitRPS   = 0 // disabled
	DefaultRateLimitBurst = 20

	DefaultDataDir = "/var/lib/nftmesh-server/data"

	DefaultSnapshotInterval       = 0 // disabled
	DefaultSnapshotRetentionCount = 5
	DefaultSnapshotRetentionDays  = 7

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration: a single-node
// in-memory ledger on localhost.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				ShutdownTimeout: DefaultShutdownTimeout,
			},
			RateLimit: RateLimitConfig{
				RPS:   DefaultRateLimitRPS,
				Burst: DefaultRateLimitBurst,
			},
		},
		Storage: StorageSection{
			Engine:  storage.EngineMemory,
			DataDir: DefaultDataDir,
			Badger: BadgerSection{
				SyncWrites: true,
			},
		},
		Snapshot: SnapshotSection{
			Interval:       DefaultSnapshotInterval,
			RetentionCount: DefaultSnapshotRetentionCount,
			RetentionDays:  DefaultSnapshotRetentionDays,
		},
		Events: EventsSection{
			RingCapacity: notify.DefaultRingCapacity,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
