package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"minorityScope/internal/config"
	"minorityScope/internal/engine"
	"minorityScope/internal/handler"
	"minorityScope/internal/source"
	"minorityScope/internal/storage"
	"minorityScope/internal/storage/postgres"
)

func runIndex(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadIndex(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, flush, err := newLogger(cfg.LogLevel, cfg.SentryDSN)
	if err != nil {
		return err
	}
	defer flush()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}

	ctx, stop := signalContext()
	defer stop()

	logger.Info("index start",
		zap.String("in", cfg.In),
		zap.String("store", cfg.Store),
		zap.Int("max_chains", cfg.MaxChains),
	)

	return project(ctx, cfg, source.NewJSONL(cfg.In, logger), logger)
}

func runConsume(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadIndex(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, flush, err := newLogger(cfg.LogLevel, cfg.SentryDSN)
	if err != nil {
		return err
	}
	defer flush()

	ctx, stop := signalContext()
	defer stop()

	js, err := source.ConnectJetStream(jetStreamConfig(cfg.NATS), logger)
	if err != nil {
		return err
	}
	defer js.Close()
	if err := js.EnsureStream(ctx); err != nil {
		return err
	}

	logger.Info("consume start",
		zap.String("nats_url", cfg.NATS.URL),
		zap.String("stream", cfg.NATS.Stream),
		zap.String("consumer", cfg.NATS.Consumer),
		zap.String("store", cfg.Store),
	)

	err = project(ctx, cfg, js, logger)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// project runs src through the engine into the configured store.
func project(ctx context.Context, cfg config.IndexConfig, src source.Source, logger *zap.Logger) error {
	var (
		store  storage.Store
		memory *storage.MemoryStore
	)
	switch cfg.Store {
	case config.StorePostgres:
		pg, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		store = pg
	default:
		memory = storage.NewMemoryStore()
		store = memory
	}

	eng := engine.New(engine.Config{MaxChains: cfg.MaxChains, LaneBuffer: cfg.LaneBuffer}, store, handler.Default(), logger)
	runErr := eng.Run(ctx, src)

	stats := eng.Stats()
	logger.Info("projection complete", zap.Uint64("applied", stats.Applied), zap.Uint64("duplicates", stats.Duplicates))

	if memory != nil && cfg.Snapshot != "" {
		if err := writeSnapshot(cfg.Snapshot, memory); err != nil {
			return errors.Join(runErr, err)
		}
		logger.Info("snapshot written", zap.String("path", cfg.Snapshot), zap.Int("entities", memory.Len()))
	}
	return runErr
}

func writeSnapshot(path string, store *storage.MemoryStore) error {
	w, err := newJSONLWriter(path)
	if err != nil {
		return err
	}
	for _, rec := range store.Snapshot() {
		if err := w.Write(rec); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
