package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/arcfactory/arc/internal/adapters/middleware"
	redisstore "github.com/arcfactory/arc/internal/adapters/redis"
	"github.com/arcfactory/arc/internal/cache"
	"github.com/arcfactory/arc/internal/config"
	"github.com/arcfactory/arc/internal/metrics"
	"github.com/arcfactory/arc/internal/ops"
	"github.com/arcfactory/arc/internal/selector"
	"github.com/arcfactory/arc/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the operational HTTP endpoint",
	Long: `Serves health, cache and selector statistics, and Prometheus metrics for
a pipeline process. Tiers, thresholds and the listen address come from the
configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		registry := prometheus.NewRegistry()
		collector := metrics.NewCollector(registry)

		managerOpts := []cache.ManagerOption{cache.WithManagerLogger(logger)}
		if cfg.Redis.Enabled {
			persist, err := buildPersistence(cfg)
			if err != nil {
				return err
			}
			managerOpts = append(managerOpts, cache.WithOutputPersistence(persist))
		}
		caches := cache.NewManager(
			cfg.Cache.Data.TierCacheConfig(),
			cfg.Cache.Output.TierCacheConfig(),
			collector,
			managerOpts...,
		)
		defer caches.Close()
		caches.StartPruner(cmd.Context(), cfg.Cache.PruneInterval.Std())

		sel := selector.New(
			selector.WithUsageThreshold(cfg.Selector.UsageThreshold),
			selector.WithHotCostCeiling(cfg.Selector.HotCostCeiling),
			selector.WithLogger(logger),
		)
		if cfg.Selector.CatalogPath != "" {
			if err := sel.LoadFile(cfg.Selector.CatalogPath); err != nil {
				return err
			}
		}

		server := ops.NewServer(caches, sel, ops.WithLogger(logger))
		srv := &http.Server{
			Addr:    cfg.Ops.Listen,
			Handler: server.Handler(registry),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("ops endpoint listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown incomplete", "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("close server: %w", err)
				}
			}
			logger.Info("ops endpoint stopped")
		}
		return nil
	},
}

// buildPersistence assembles the Redis output store with the configured
// masking and encryption middleware around it.
func buildPersistence(cfg config.Config) (ports.OutputStore, error) {
	store := redisstore.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB,
		redisstore.WithPrefix(cfg.Redis.Prefix))

	var mws []middleware.Middleware
	if len(cfg.Redis.MaskKeys) > 0 {
		mws = append(mws, middleware.NewMasking(cfg.Redis.MaskKeys))
	}
	key, err := cfg.Redis.EncryptionKeyBytes()
	if err != nil {
		return nil, fmt.Errorf("redis.encryption_key: %w", err)
	}
	if len(key) > 0 {
		mws = append(mws, middleware.NewEncryption(middleware.EncryptionConfig{ActiveKey: key}))
	}
	return middleware.Chain(store, mws...), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
