package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/nftmesh/nftmesh-go/internal/storage"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifySnapshot(&cfg.Snapshot); err != nil {
		return err
	}
	if err := verifySecurity(&cfg.Security); err != nil {
		return err
	}
	if cfg.Events.RingCapacity < 0 {
		return errors.New("events.ring_capacity must not be negative")
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}
	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst < 1 {
		return errors.New("server.rate_limit.burst must be at least 1 when rps is set")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Engine {
	case "", storage.EngineMemory:
		return nil
	case storage.EngineBadger:
	default:
		return fmt.Errorf("storage.engine must be %q or %q", storage.EngineMemory, storage.EngineBadger)
	}

	if cfg.DataDir == "" {
		return errors.New("storage.data_dir is required for the badger engine")
	}
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return fmt.Errorf("cannot create data directory: %w", err)
	}
	if t := cfg.Badger.GCThreshold; t < 0 || t > 1 {
		return errors.New("storage.badger.gc_threshold must be between 0 and 1")
	}
	return nil
}

func verifySnapshot(cfg *SnapshotSection) error {
	if cfg.Dir == "" {
		if cfg.Interval > 0 {
			return errors.New("snapshot.interval requires snapshot.dir")
		}
		return nil
	}
	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return fmt.Errorf("cannot create snapshot directory: %w", err)
	}
	if cfg.RetentionCount < 1 {
		return errors.New("snapshot.retention_count must be at least 1")
	}
	return nil
}

func verifySecurity(cfg *SecuritySection) error {
	if cfg.EncryptionKey != "" && cfg.EncryptionPassphrase != "" {
		return errors.New("security.encryption_key and encryption_passphrase are mutually exclusive")
	}
	if cfg.TLSCAFile != "" {
		if _, err := os.Stat(cfg.TLSCAFile); err != nil {
			return fmt.Errorf("security.tls_ca_file: %w", err)
		}
	}
	return nil
}
