package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"minorityScope/internal/config"
	"minorityScope/internal/game"
	"minorityScope/internal/model"
	"minorityScope/internal/source"
)

func runDecode(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDecode(cfgFile, cmd.Flags())
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
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.Errors == "" {
		return fmt.Errorf("errors path is required")
	}

	ctx, stop := signalContext()
	defer stop()

	decoder, err := game.NewDecoder(game.DecoderConfig{Topic0Map: cfg.Topic0Map})
	if err != nil {
		return err
	}

	var publisher *source.JetStream
	if cfg.Publish {
		publisher, err = source.ConnectJetStream(jetStreamConfig(cfg.NATS), logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		if err := publisher.EnsureStream(ctx); err != nil {
			return err
		}
	}

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	outWriter, err := newJSONLWriter(cfg.Out)
	if err != nil {
		return err
	}
	defer outWriter.Close()

	errWriter, err := newJSONLWriter(cfg.Errors)
	if err != nil {
		return err
	}
	defer errWriter.Close()

	logger.Info("decode start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.Bool("publish", cfg.Publish),
		zap.Int("topics", len(decoder.Topics())),
	)

	scanner := bufio.NewScanner(inputFile)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var total, decoded, skipped, failed, published int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.LogRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			writeDecodeError(errWriter, model.DecodeError{Error: err.Error()})
			continue
		}
		if record.Topic0() == "" {
			failed++
			writeDecodeError(errWriter, model.DecodeErrorFromRecord(record, fmt.Errorf("missing topic0")))
			continue
		}
		if !decoder.CanDecode(record.Topic0()) {
			skipped++
			continue
		}

		event, err := decoder.Decode(record)
		if err != nil {
			failed++
			decodeErr := model.DecodeErrorFromRecord(record, err)
			logger.Warn("decode failed", zap.Uint64("block_number", record.BlockNumber), zap.String("tx_hash", record.TxHash), zap.Error(err))
			writeDecodeError(errWriter, decodeErr)
			continue
		}

		if err := outWriter.Write(event); err != nil {
			return err
		}
		decoded++

		if publisher != nil {
			if err := publisher.Publish(ctx, event); err != nil {
				return err
			}
			published++
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	logger.Info("decode complete",
		zap.Int("total", total),
		zap.Int("decoded", decoded),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.Int("published", published),
	)

	return nil
}

func jetStreamConfig(cfg config.NATSConfig) source.JetStreamConfig {
	return source.JetStreamConfig{
		URL:            cfg.URL,
		Stream:         cfg.Stream,
		SubjectPrefix:  cfg.SubjectPrefix,
		Consumer:       cfg.Consumer,
		AckWait:        cfg.AckWait,
		MaxDeliver:     cfg.MaxDeliver,
		MaxAckPending:  cfg.MaxAckPending,
		MaxReconnects:  cfg.MaxReconnects,
		ReconnectWait:  cfg.ReconnectWait,
		ConnectionName: "minority-indexer",
	}
}

// jsonlWriter truncates its file on open, so reruns replace earlier output.
type jsonlWriter struct {
	file   *os.File
	writer *bufio.Writer
}

func newJSONLWriter(path string) (*jsonlWriter, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	return &jsonlWriter{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

func (w *jsonlWriter) Write(value any) error {
	line, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if _, err := w.writer.Write(line); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	return nil
}

func (w *jsonlWriter) Close() error {
	if w == nil {
		return nil
	}
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

func writeDecodeError(writer *jsonlWriter, errRecord model.DecodeError) {
	if writer == nil {
		return
	}
	_ = writer.Write(errRecord)
}
