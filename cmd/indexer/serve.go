package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"minorityScope/internal/api"
	"minorityScope/internal/config"
	"minorityScope/internal/storage/postgres"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
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

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	server := api.New(api.Config{Listen: cfg.Listen}, store, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
