// Package handler holds one state transition per game contract event.
package handler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"minorityScope/internal/aggregate"
	"minorityScope/internal/model"
	"minorityScope/internal/storage"
)

// ErrInvalidPayload marks events whose fields cannot be parsed.
var ErrInvalidPayload = errors.New("invalid payload")

// Handler applies one event to the unit of work and records its stats delta.
type Handler func(ctx context.Context, hc *Context) error

// Context is everything a handler may touch while applying one event.
type Context struct {
	Event  model.GameEvent
	Unit   *storage.Unit
	Delta  *aggregate.Delta
	Logger *zap.Logger
}

func NewContext(ev model.GameEvent, unit *storage.Unit, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Context{
		Event: ev,
		Unit:  unit,
		Delta: &aggregate.Delta{},
		Logger: logger.With(
			zap.Uint64("chain_id", ev.ChainID),
			zap.Uint64("block", ev.BlockNumber),
			zap.String("tx", ev.TxHash),
			zap.Uint64("log_index", ev.LogIndex),
			zap.String("event", ev.EventName),
		),
	}
}

func (hc *Context) ChainID() uint64 { return hc.Event.ChainID }
func (hc *Context) Block() uint64   { return hc.Event.BlockNumber }
func (hc *Context) Time() uint64    { return hc.Event.Timestamp }

func (hc *Context) amount(name string) (model.Amount, error) {
	v, err := hc.Event.Amount(name)
	if err != nil {
		return model.Amount{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return v, nil
}

func (hc *Context) uint(name string) (uint64, error) {
	v, err := hc.Event.Uint(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return v, nil
}

func (hc *Context) str(name string) (string, error) {
	v, err := hc.Event.Text(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return v, nil
}

func (hc *Context) choice(name string) (model.Choice, error) {
	v, err := hc.str(name)
	if err != nil {
		return "", err
	}
	c, err := model.ParseChoice(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return c, nil
}

// missing logs a skipped mutation on an entity that does not exist yet.
func (hc *Context) missing(key model.Key) {
	hc.Logger.Warn("missing referenced entity, skipping mutation",
		zap.String("kind", string(key.Kind)), zap.String("id", key.ID))
}

func (hc *Context) inconsistency(msg string, fields ...zap.Field) {
	hc.Logger.Warn("inconsistency: "+msg, fields...)
}

// load reads key into dst and logs when the entity is absent.
func (hc *Context) load(ctx context.Context, key model.Key, dst any) (bool, error) {
	found, err := hc.Unit.Get(ctx, key, dst)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !found {
		hc.missing(key)
	}
	return found, nil
}

func (hc *Context) put(e model.Entity) error {
	if err := hc.Unit.Put(e); err != nil {
		return fmt.Errorf("stage %s: %w", e.StoreKey(), err)
	}
	return nil
}
