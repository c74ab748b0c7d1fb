package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"minorityScope/internal/model"
)

const maxLineSize = 8 * 1024 * 1024

// JSONL reads typed events from a JSON lines file written by the decode command.
type JSONL struct {
	path   string
	logger *zap.Logger
}

func NewJSONL(path string, logger *zap.Logger) *JSONL {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONL{path: path, logger: logger}
}

func (s *JSONL) Stream(ctx context.Context, out chan<- Delivery) error {
	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()
	return StreamReader(ctx, file, out)
}

// StreamReader delivers every non-empty line of r as a GameEvent.
func StreamReader(ctx context.Context, r io.Reader, out chan<- Delivery) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var ev model.GameEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return fmt.Errorf("line %d: decode event: %w", lineNo, err)
		}
		select {
		case out <- Delivery{Event: ev, Ack: noop, Nak: noop}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// Slice delivers a fixed list of events. Used by tests and replays.
type Slice []model.GameEvent

func (s Slice) Stream(ctx context.Context, out chan<- Delivery) error {
	for _, ev := range s {
		select {
		case out <- Delivery{Event: ev, Ack: noop, Nak: noop}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
