package aggregate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"minorityScope/internal/model"
	"minorityScope/internal/storage"
)

// ErrStopped is returned by Commit once the aggregator loop has exited.
var ErrStopped = errors.New("aggregator stopped")

type commitRequest struct {
	ctx     context.Context
	chainID uint64
	unit    *storage.Unit
	delta   Delta
	at      uint64
	reply   chan error
}

// Aggregator is the single writer of the stats entities. Every event's unit of work is
// committed through it, so SystemStats is never updated by two chain workers at once.
type Aggregator struct {
	store    storage.Store
	logger   *zap.Logger
	requests chan commitRequest
	done     chan struct{}
}

func NewAggregator(store storage.Store, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		store:    store,
		logger:   logger,
		requests: make(chan commitRequest),
		done:     make(chan struct{}),
	}
}

// Run serves commit requests until ctx is done.
func (a *Aggregator) Run(ctx context.Context) error {
	defer close(a.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-a.requests:
			req.reply <- a.commit(req)
		}
	}
}

// Commit applies delta to the stats of chainID and the global stats, stages both in unit and
// writes the unit to the store atomically. It blocks until the write finished.
func (a *Aggregator) Commit(ctx context.Context, chainID uint64, unit *storage.Unit, delta Delta, at uint64) error {
	req := commitRequest{ctx: ctx, chainID: chainID, unit: unit, delta: delta, at: at, reply: make(chan error, 1)}
	select {
	case a.requests <- req:
	case <-a.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Aggregator) commit(req commitRequest) error {
	if !req.delta.Empty() {
		if err := a.applyStats(req); err != nil {
			return err
		}
	}
	if err := a.store.Commit(req.ctx, req.unit.Writes()); err != nil {
		return fmt.Errorf("commit chain %d: %w", req.chainID, err)
	}
	return nil
}

func (a *Aggregator) applyStats(req commitRequest) error {
	var network model.NetworkStats
	if _, err := req.unit.GetOrCreate(req.ctx, model.NetworkStatsKey(req.chainID), &network, func() {
		network = model.NewNetworkStats(req.chainID)
	}); err != nil {
		return fmt.Errorf("load network stats: %w", err)
	}
	var system model.SystemStats
	if _, err := req.unit.GetOrCreate(req.ctx, model.SystemStatsKey(), &system, func() {
		system = model.NewSystemStats()
	}); err != nil {
		return fmt.Errorf("load system stats: %w", err)
	}

	if clamped := Apply(&network.Counters, req.delta); len(clamped) > 0 {
		a.logger.Warn("inconsistency: network counter clamped at zero",
			zap.Uint64("chain_id", req.chainID), zap.Strings("counters", clamped))
	}
	if clamped := Apply(&system.Counters, req.delta); len(clamped) > 0 {
		a.logger.Warn("inconsistency: system counter clamped at zero", zap.Strings("counters", clamped))
	}

	if req.delta.ProjectPool != nil {
		previous := network.TotalProjectPool
		network.TotalProjectPool = *req.delta.ProjectPool
		next := system.TotalProjectPool.Add(req.delta.ProjectPool.Sub(previous))
		if next.Sign() < 0 {
			a.logger.Warn("inconsistency: system project pool clamped at zero", zap.Uint64("chain_id", req.chainID))
			next = model.Amount{}
		}
		system.TotalProjectPool = next
	}

	if req.at > network.LastUpdatedAt {
		network.LastUpdatedAt = req.at
	}
	if req.at > system.LastUpdatedAt {
		system.LastUpdatedAt = req.at
	}

	if err := req.unit.Put(&network); err != nil {
		return err
	}
	return req.unit.Put(&system)
}
