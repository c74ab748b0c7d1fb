// Package engine routes decoded game events through the handlers, one sequential
// worker per chain.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"minorityScope/internal/aggregate"
	"minorityScope/internal/handler"
	"minorityScope/internal/source"
	"minorityScope/internal/storage"
)

const (
	defaultMaxChains  = 16
	defaultLaneBuffer = 256
)

// Config controls engine behavior.
type Config struct {
	// MaxChains bounds the number of concurrently indexed chains.
	MaxChains int
	// LaneBuffer is the number of events queued per chain worker.
	LaneBuffer int
}

// Stats counts settled events.
type Stats struct {
	Applied    uint64
	Duplicates uint64
}

// Engine fans events out to per-chain workers and commits through one aggregator.
type Engine struct {
	cfg        Config
	router     *Router
	aggregator *aggregate.Aggregator
	logger     *zap.Logger

	once       sync.Once
	applied    atomic.Uint64
	duplicates atomic.Uint64
}

func New(cfg Config, store storage.Store, registry *handler.Registry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxChains <= 0 {
		cfg.MaxChains = defaultMaxChains
	}
	if cfg.LaneBuffer <= 0 {
		cfg.LaneBuffer = defaultLaneBuffer
	}
	agg := aggregate.NewAggregator(store, logger)
	return &Engine{
		cfg:        cfg,
		router:     NewRouter(store, registry, agg, logger),
		aggregator: agg,
		logger:     logger,
	}
}

func (e *Engine) Stats() Stats {
	return Stats{Applied: e.applied.Load(), Duplicates: e.duplicates.Load()}
}

// Run consumes src until it is exhausted, ctx is done or a chain fails. A failing
// chain stops the whole run; its event is nak'ed and left for redelivery.
// Run may be called once.
func (e *Engine) Run(ctx context.Context, src source.Source) error {
	started := false
	e.once.Do(func() { started = true })
	if !started {
		return fmt.Errorf("engine already ran")
	}

	aggCtx, stopAggregator := context.WithCancel(context.Background())
	aggDone := make(chan struct{})
	go func() {
		defer close(aggDone)
		_ = e.aggregator.Run(aggCtx)
	}()
	defer func() {
		stopAggregator()
		<-aggDone
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := pond.NewPool(e.cfg.MaxChains, pond.WithContext(runCtx))
	defer pool.StopAndWait()
	group := pool.NewGroupContext(runCtx)

	var (
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	deliveries := make(chan source.Delivery)
	srcDone := make(chan error, 1)
	go func() {
		srcDone <- src.Stream(runCtx, deliveries)
		close(deliveries)
	}()

	lanes := make(map[uint64]chan source.Delivery)
dispatch:
	for {
		select {
		case <-runCtx.Done():
			break dispatch
		case d, ok := <-deliveries:
			if !ok {
				break dispatch
			}
			chainID := d.Event.ChainID
			lane, ok := lanes[chainID]
			if !ok {
				if len(lanes) >= e.cfg.MaxChains {
					_ = d.Nak()
					fail(fmt.Errorf("chain %d exceeds max chains %d", chainID, e.cfg.MaxChains))
					break dispatch
				}
				lane = make(chan source.Delivery, e.cfg.LaneBuffer)
				lanes[chainID] = lane
				group.SubmitErr(e.worker(runCtx, chainID, lane, fail))
				e.logger.Info("chain worker started", zap.Uint64("chain_id", chainID))
			}
			select {
			case lane <- d:
			case <-runCtx.Done():
				_ = d.Nak()
				break dispatch
			}
		}
	}

	for _, lane := range lanes {
		close(lane)
	}
	if err := group.Wait(); err != nil {
		fail(err)
	}
	cancel()
	// whatever was never applied goes back to the source for redelivery
	for _, lane := range lanes {
		nakAll(lane)
	}
	nakAll(deliveries)
	if err := <-srcDone; err != nil && !errors.Is(err, context.Canceled) {
		fail(fmt.Errorf("source: %w", err))
	}

	stats := e.Stats()
	e.logger.Info("engine stopped", zap.Uint64("applied", stats.Applied), zap.Uint64("duplicates", stats.Duplicates))
	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func (e *Engine) worker(ctx context.Context, chainID uint64, lane <-chan source.Delivery, fail func(error)) func() error {
	return func() error {
		var werr error
		for d := range lane {
			if werr != nil || ctx.Err() != nil {
				_ = d.Nak()
				continue
			}
			result, err := e.router.Apply(ctx, d.Event)
			if err != nil {
				if nakErr := d.Nak(); nakErr != nil {
					e.logger.Warn("nak event", zap.Uint64("chain_id", chainID), zap.Error(nakErr))
				}
				werr = fmt.Errorf("chain %d: %w", chainID, err)
				e.logger.Error("chain worker halted", zap.Uint64("chain_id", chainID), zap.Error(err))
				fail(werr)
				continue
			}
			if err := d.Ack(); err != nil {
				e.logger.Warn("ack event", zap.Uint64("chain_id", chainID), zap.Error(err))
			}
			switch result {
			case ResultDuplicate:
				e.duplicates.Add(1)
			default:
				e.applied.Add(1)
			}
		}
		return werr
	}
}

func nakAll(deliveries <-chan source.Delivery) {
	for d := range deliveries {
		_ = d.Nak()
	}
}
