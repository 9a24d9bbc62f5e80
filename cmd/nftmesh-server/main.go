package main

import (
	"context"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nftmesh/nftmesh-go/internal/core/ledger"
	"github.com/nftmesh/nftmesh-go/internal/infra/buildinfo"
	"github.com/nftmesh/nftmesh-go/internal/infra/confloader"
	"github.com/nftmesh/nftmesh-go/internal/infra/shutdown"
	"github.com/nftmesh/nftmesh-go/internal/infra/tlsroots"
	"github.com/nftmesh/nftmesh-go/internal/notify"
	"github.com/nftmesh/nftmesh-go/internal/server/config"
	"github.com/nftmesh/nftmesh-go/internal/server/httpserver"
	"github.com/nftmesh/nftmesh-go/internal/server/httpserver/handler"
	"github.com/nftmesh/nftmesh-go/internal/storage"
	"github.com/nftmesh/nftmesh-go/internal/storage/snapshot"
	"github.com/nftmesh/nftmesh-go/internal/telemetry/logger"
	"github.com/nftmesh/nftmesh-go/internal/telemetry/metric"
	"github.com/nftmesh/nftmesh-go/pkg/crypto/adaptive"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("nftmesh-server " + buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slogLogger := log.Slog()

	log.Info("starting nftmesh-server",
		"version", buildinfo.Get().Version,
		"commit", buildinfo.Get().Commit,
		"config", *configFile)

	metrics := metric.New()

	// Storage engine and ledger store.
	kv, err := storage.Open(cfg.Storage.KVConfig(), slogLogger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	if badger, ok := kv.(*storage.BadgerEngine); ok {
		badger.RegisterMetrics(metrics.Registry())
	}
	store := storage.NewStore(kv)

	// Snapshot manager, if configured.
	snapshots, err := initSnapshots(cfg, slogLogger)
	if err != nil {
		return fmt.Errorf("init snapshots: %w", err)
	}

	ctx := context.Background()
	if snapshots != nil {
		if err := maybeRestore(ctx, store, snapshots, slogLogger); err != nil {
			return fmt.Errorf("snapshot restore: %w", err)
		}
	}

	// Ledger with the event sink fan-out.
	ring := notify.NewRing(cfg.Events.RingCapacity)
	sink := notify.Multi(notify.NewSlogSink(slogLogger), ring, notify.NewMetricSink(metrics))
	led := ledger.New(store, ledger.WithSink(sink), ledger.WithLogger(slogLogger))

	if n, err := led.TokenCount(ctx); err == nil {
		metrics.TokensTotal.Set(float64(n))
	}

	// HTTP handler and router.
	h := handler.New(handler.Config{
		Ledger:    led,
		Store:     store,
		Snapshots: snapshots,
		Ring:      ring,
		Metrics:   metrics,
		Logger:    slogLogger,
	})
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Handler:        h,
		Metrics:        metrics,
		Logger:         slogLogger,
		RateLimitRPS:   cfg.Server.RateLimit.RPS,
		RateLimitBurst: cfg.Server.RateLimit.Burst,
	})

	tlsCfg, err := buildTLSConfig(cfg)
	if err != nil {
		return fmt.Errorf("tls config: %w", err)
	}
	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router, tlsCfg)

	// Graceful shutdown, hooks run in reverse registration order.
	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout)

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down storage engine")
		return kv.Close()
	})
	if snapshots != nil {
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("writing final snapshot")
			state, err := led.Export(ctx, store)
			if err != nil {
				return err
			}
			_, err = snapshots.Create(state)
			return err
		})
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	// Config file watcher for log level hot reload.
	if *configFile != "" {
		if w, err := startConfigWatcher(*configFile, slogLogger); err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return w.Stop()
			})
		}
	}

	// Periodic snapshot loop.
	if snapshots != nil && cfg.Snapshot.Interval > 0 {
		go snapshotLoop(led, store, snapshots, cfg.Snapshot.Interval, slogLogger, shutdownHandler.Done())
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.HTTP.Addr, "tls", tlsCfg != nil)

		var err error
		if cfg.Server.HTTP.TLSCertFile != "" && cfg.Server.HTTP.TLSKeyFile != "" {
			err = httpServer.ListenAndServeTLS(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile)
		} else {
			err = httpServer.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}

	logger.SetDefault(log)
	return log, nil
}

// initSnapshots creates the snapshot manager, wiring up encryption from
// the security section. Returns nil when snapshots are not configured.
func initSnapshots(cfg *config.ServerConfig, log *slog.Logger) (*snapshot.Manager, error) {
	if cfg.Snapshot.Dir == "" {
		return nil, nil
	}

	snapCfg := snapshot.DefaultConfig(cfg.Snapshot.Dir)
	snapCfg.RetentionCount = cfg.Snapshot.RetentionCount
	snapCfg.RetentionDays = cfg.Snapshot.RetentionDays

	cipher, err := buildSnapshotCipher(cfg)
	if err != nil {
		return nil, err
	}
	snapCfg.Cipher = cipher

	if cipher != nil {
		log.Info("snapshot encryption enabled", "dir", cfg.Snapshot.Dir)
	}

	return snapshot.NewManager(snapCfg)
}

// buildSnapshotCipher constructs the snapshot cipher from the configured
// key or passphrase. The passphrase salt is persisted alongside the
// snapshots so later runs derive the same key.
func buildSnapshotCipher(cfg *config.ServerConfig) (adaptive.Cipher, error) {
	enc := snapshot.EncryptionConfig{}

	switch {
	case cfg.Security.EncryptionKey != "":
		key, err := hex.DecodeString(cfg.Security.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("security.encryption_key is not valid hex: %w", err)
		}
		enc.Key = key
	case cfg.Security.EncryptionPassphrase != "":
		enc.Passphrase = []byte(cfg.Security.EncryptionPassphrase)
		salt, err := loadSalt(cfg.Snapshot.Dir)
		if err != nil {
			return nil, err
		}
		enc.Salt = salt
	default:
		return nil, nil
	}

	cipher, salt, err := snapshot.NewCipherFromConfig(enc)
	if err != nil {
		return nil, err
	}
	if len(enc.Passphrase) > 0 && enc.Salt == nil {
		if err := saveSalt(cfg.Snapshot.Dir, salt); err != nil {
			return nil, err
		}
	}
	return cipher, nil
}

const saltFileName = "snapshot.salt"

func loadSalt(dir string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, saltFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(strings.TrimSpace(string(data)))
}

func saveSalt(dir string, salt []byte) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, saltFileName), []byte(hex.EncodeToString(salt)+"\n"), 0600)
}

// maybeRestore loads the newest snapshot into an empty store. A store
// that already has tokens is left untouched; the engine's own
// durability wins over stale snapshots.
func maybeRestore(ctx context.Context, store *storage.Store, snapshots *snapshot.Manager, log *slog.Logger) error {
	n, err := store.CountTokens(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	state, info, err := snapshots.Load()
	if errors.Is(err, snapshot.ErrNoSnapshots) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := store.Restore(ctx, state); err != nil {
		return err
	}
	log.Info("restored ledger from snapshot",
		"snapshot_id", info.ID,
		"tokens", info.TokenCount)
	return nil
}

// snapshotLoop writes a snapshot every interval until stop closes. Export
// goes through the ledger so the scans see a quiesced state.
func snapshotLoop(led *ledger.Ledger, store *storage.Store, snapshots *snapshot.Manager, interval time.Duration, log *slog.Logger, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			state, err := led.Export(context.Background(), store)
			if err != nil {
				log.Error("periodic snapshot export failed", "error", err)
				continue
			}
			info, err := snapshots.Create(state)
			if err != nil {
				log.Error("periodic snapshot failed", "error", err)
				continue
			}
			log.Info("periodic snapshot written",
				"snapshot_id", info.ID,
				"tokens", info.TokenCount)

			if err := snapshots.Prune(); err != nil {
				log.Warn("snapshot prune failed", "error", err)
			}
		}
	}
}

// buildTLSConfig returns a TLS config requiring client certificates when
// a CA bundle is configured, nil otherwise. Certificate and key files are
// passed to ListenAndServeTLS separately.
func buildTLSConfig(cfg *config.ServerConfig) (*tls.Config, error) {
	if cfg.Security.TLSCAFile == "" {
		return nil, nil
	}
	if cfg.Server.HTTP.TLSCertFile == "" {
		return nil, errors.New("security.tls_ca_file requires server.http.tls_cert_file")
	}

	pool := tlsroots.NewEmptyPool()
	if err := pool.AddCertFile(cfg.Security.TLSCAFile); err != nil {
		return nil, err
	}
	return pool.MutualTLSConfig(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile)
}

// startConfigWatcher reloads the log level when the config file changes.
// Other settings require a restart.
func startConfigWatcher(path string, log *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(changed string) {
		loader := confloader.NewLoader(confloader.WithConfigFile(changed))
		cfg := config.Default()
		if err := loader.Load(cfg); err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		log.Info("log level reloaded", "level", cfg.Log.Level)
	})

	w.StartAsync()
	return w, nil
}
