package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"minorityScope/internal/chain"
	"minorityScope/internal/config"
	"minorityScope/internal/game"
	"minorityScope/internal/indexer"
	"minorityScope/internal/storage"
)

func main() {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Minority game event indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("env-dir", ".", "directory holding .env files")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch game contract logs into JSONL",
		RunE:  runIndexer,
	}

	runCmd.Flags().String("rpc", "", "RPC URL")
	runCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	runCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest minus confirmations")
	runCmd.Flags().Uint64("confirmations", 0, "blocks behind head to stop at when --to is 0")
	runCmd.Flags().StringSlice("address", nil, "game contract addresses (comma-separated)")
	runCmd.Flags().StringSlice("topic0", nil, "topic0 filters (comma-separated), empty means every game event")
	runCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	runCmd.Flags().String("out", "./data/logs.jsonl", "output JSONL path")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	addLogFlags(runCmd.Flags())

	root.AddCommand(runCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode raw logs into game events",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("in", "./data/logs.jsonl", "input raw logs JSONL")
	decodeCmd.Flags().String("out", "./data/game_events.jsonl", "output game events JSONL")
	decodeCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	decodeCmd.Flags().String("topic0-map", "", "extra topic0->event mappings (comma-separated key=value)")
	decodeCmd.Flags().Bool("publish", false, "also publish decoded events to NATS JetStream")
	addNATSFlags(decodeCmd.Flags())
	addLogFlags(decodeCmd.Flags())

	root.AddCommand(decodeCmd)

	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Project game events from JSONL into entities",
		RunE:  runIndex,
	}

	indexCmd.Flags().String("in", "./data/game_events.jsonl", "input game events JSONL")
	addStoreFlags(indexCmd.Flags())
	indexCmd.Flags().String("snapshot", "./data/entities.jsonl", "entity snapshot JSONL written by the memory store")
	addLogFlags(indexCmd.Flags())

	root.AddCommand(indexCmd)

	consumeCmd := &cobra.Command{
		Use:   "consume",
		Short: "Project game events from NATS JetStream into entities",
		RunE:  runConsume,
	}

	addStoreFlags(consumeCmd.Flags())
	addNATSFlags(consumeCmd.Flags())
	addLogFlags(consumeCmd.Flags())

	root.AddCommand(consumeCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve indexed entities over HTTP",
		RunE:  runServe,
	}

	serveCmd.Flags().String("listen", ":8080", "listen address")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	addLogFlags(serveCmd.Flags())

	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addLogFlags(flags *pflag.FlagSet) {
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("sentry-dsn", "", "Sentry DSN for error reporting")
}

func addStoreFlags(flags *pflag.FlagSet) {
	flags.String("store", config.StoreMemory, "entity store (memory, postgres)")
	flags.String("pg-dsn", "", "Postgres DSN")
	flags.Int("max-chains", 16, "maximum concurrently indexed chains")
	flags.Int("lane-buffer", 256, "events queued per chain")
}

func addNATSFlags(flags *pflag.FlagSet) {
	flags.String("nats-url", "nats://127.0.0.1:4222", "NATS server URL")
	flags.String("nats-stream", "GAME_EVENTS", "JetStream stream name")
	flags.String("nats-subject-prefix", "games", "subject prefix, events go to <prefix>.<chain>.<event>")
	flags.String("nats-consumer", "indexer", "durable consumer name")
	flags.Duration("nats-ack-wait", 30*time.Second, "ack wait before redelivery")
	flags.Int("nats-max-deliver", 5, "maximum deliveries per message")
	flags.Int("nats-max-ack-pending", 1, "unacknowledged messages in flight; above 1 redeliveries may arrive out of order")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runIndexer(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, flush, err := newLogger(cfg.LogLevel, cfg.SentryDSN)
	if err != nil {
		return err
	}
	defer flush()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	addresses, err := indexer.ParseAddresses(cfg.Addresses)
	if err != nil {
		return err
	}
	if len(addresses) == 0 {
		return fmt.Errorf("address list is required")
	}

	filters := cfg.Topic0
	if len(filters) == 0 {
		decoder, err := game.NewDecoder(game.DecoderConfig{})
		if err != nil {
			return err
		}
		filters = decoder.Topics()
	}
	topic0, err := indexer.ParseTopic0(filters)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:         cfg.FromBlock,
		ToBlock:           cfg.ToBlock,
		Confirmations:     cfg.Confirmations,
		Addresses:         addresses,
		Topic0:            topic0,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, chainClient, storage.NewJsonlWriter(cfg.Out), logger)

	logger.Info("indexer start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Uint64("confirmations", cfg.Confirmations),
		zap.Int("addresses", len(addresses)),
		zap.Int("topic0", len(topic0)),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("out", cfg.Out),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	return runner.Run(ctx)
}
