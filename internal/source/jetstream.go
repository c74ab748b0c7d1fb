package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"minorityScope/internal/model"
)

// JetStreamConfig holds the NATS JetStream connection settings.
type JetStreamConfig struct {
	URL            string
	Stream         string
	SubjectPrefix  string
	Consumer       string
	AckWait        time.Duration
	MaxDeliver     int
	MaxAckPending  int
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

// Subject returns the subject an event is published on: <prefix>.<chain>.<event>.
func (c JetStreamConfig) Subject(ev model.GameEvent) string {
	return strings.Join([]string{c.prefix(), strconv.FormatUint(ev.ChainID, 10), ev.EventName}, ".")
}

// consumerConfig keeps at most MaxAckPending messages unacknowledged, one by
// default. With more in flight a redelivered event can arrive behind a newer one
// and trip the cursor guard.
func (c JetStreamConfig) consumerConfig() jetstream.ConsumerConfig {
	maxAckPending := c.MaxAckPending
	if maxAckPending <= 0 {
		maxAckPending = 1
	}
	return jetstream.ConsumerConfig{
		Durable:       c.Consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       c.AckWait,
		MaxDeliver:    c.MaxDeliver,
		MaxAckPending: maxAckPending,
		FilterSubject: c.prefix() + ".>",
	}
}

func (c JetStreamConfig) prefix() string {
	if c.SubjectPrefix == "" {
		return "games"
	}
	return c.SubjectPrefix
}

// JetStream is a NATS JetStream connection used both to publish and to consume events.
type JetStream struct {
	cfg    JetStreamConfig
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *zap.Logger
}

func ConnectJetStream(cfg JetStreamConfig, logger *zap.Logger) (*JetStream, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	if cfg.Stream == "" {
		return nil, fmt.Errorf("nats stream is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error("disconnected from nats", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("reconnected to nats", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("nats connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream: %w", err)
	}
	return &JetStream{cfg: cfg, nc: nc, js: js, logger: logger}, nil
}

// EnsureStream creates or updates the stream that captures every event subject.
func (j *JetStream) EnsureStream(ctx context.Context) error {
	_, err := j.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     j.cfg.Stream,
		Subjects: []string{j.cfg.prefix() + ".>"},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", j.cfg.Stream, err)
	}
	return nil
}

// Publish sends one event. The message id dedups republished events inside the stream window.
func (j *JetStream) Publish(ctx context.Context, ev model.GameEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msgID := fmt.Sprintf("%d-%s-%d", ev.ChainID, strings.ToLower(ev.TxHash), ev.LogIndex)
	if _, err := j.js.Publish(ctx, j.cfg.Subject(ev), data, jetstream.WithMsgID(msgID)); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Stream consumes the durable consumer and hands every message to out. Messages that
// cannot be decoded are terminated so they are never redelivered.
func (j *JetStream) Stream(ctx context.Context, out chan<- Delivery) error {
	if j.cfg.Consumer == "" {
		return fmt.Errorf("nats consumer is required")
	}
	consumer, err := j.js.CreateOrUpdateConsumer(ctx, j.cfg.Stream, j.cfg.consumerConfig())
	if err != nil {
		return fmt.Errorf("create or update consumer: %w", err)
	}

	msgs := make(chan jetstream.Msg, 100)
	sub, err := consumer.Consume(func(msg jetstream.Msg) {
		select {
		case msgs <- msg:
		case <-ctx.Done():
			_ = msg.Nak()
		}
	})
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	defer func() {
		sub.Stop()
		nakBuffered(msgs)
	}()

	j.logger.Info("consuming events", zap.String("stream", j.cfg.Stream), zap.String("consumer", j.cfg.Consumer))
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case msg := <-msgs:
			var ev model.GameEvent
			if err := json.Unmarshal(msg.Data(), &ev); err != nil {
				j.logger.Error("terminating undecodable message", zap.String("subject", msg.Subject()), zap.Error(err))
				if err := msg.Term(); err != nil {
					j.logger.Warn("term message", zap.Error(err))
				}
				continue
			}
			select {
			case out <- Delivery{Event: ev, Ack: msg.Ack, Nak: msg.Nak}:
			case <-ctx.Done():
				_ = msg.Nak()
				return nil
			}
		}
	}
}

// nakBuffered returns messages that were fetched but never handed out.
func nakBuffered(msgs chan jetstream.Msg) {
	for {
		select {
		case msg := <-msgs:
			_ = msg.Nak()
		default:
			return
		}
	}
}

func (j *JetStream) Close() {
	if j.nc == nil {
		return
	}
	j.nc.Close()
}
