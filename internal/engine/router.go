package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"minorityScope/internal/aggregate"
	"minorityScope/internal/handler"
	"minorityScope/internal/model"
	"minorityScope/internal/storage"
)

// ErrOutOfOrder is returned for an event older than the chain's last applied position.
var ErrOutOfOrder = errors.New("event out of order")

// Result tells how Apply settled an event.
type Result int

const (
	ResultApplied Result = iota
	ResultDuplicate
)

func (r Result) String() string {
	switch r {
	case ResultApplied:
		return "applied"
	case ResultDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Committer writes an event's unit of work together with its stats delta.
type Committer interface {
	Commit(ctx context.Context, chainID uint64, unit *storage.Unit, delta aggregate.Delta, at uint64) error
}

// Router applies single events: replay check, ordering guard, handler dispatch,
// audit row and cursor, then one atomic commit.
type Router struct {
	store     storage.Store
	registry  *handler.Registry
	committer Committer
	logger    *zap.Logger

	mu      sync.Mutex
	cursors map[uint64]model.Cursor
}

func NewRouter(store storage.Store, registry *handler.Registry, committer Committer, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = handler.Default()
	}
	return &Router{
		store:     store,
		registry:  registry,
		committer: committer,
		logger:    logger,
		cursors:   make(map[uint64]model.Cursor),
	}
}

// Apply processes one event. Events of one chain must not be applied concurrently.
func (r *Router) Apply(ctx context.Context, ev model.GameEvent) (Result, error) {
	if ev.TxHash == "" {
		return ResultApplied, fmt.Errorf("%w: missing tx hash", handler.ErrInvalidPayload)
	}
	if ev.EventName == "" {
		return ResultApplied, fmt.Errorf("%w: missing event name", handler.ErrInvalidPayload)
	}

	auditKey := model.EventKey(ev.ChainID, ev.TxHash, ev.LogIndex)
	_, seen, err := r.store.Get(ctx, auditKey)
	if err != nil {
		return ResultApplied, fmt.Errorf("replay check %s: %w", auditKey, err)
	}
	if seen {
		r.logger.Debug("duplicate event skipped", zap.String("event_id", auditKey.ID), zap.Uint64("chain_id", ev.ChainID))
		return ResultDuplicate, nil
	}

	last, ok, err := r.cursor(ctx, ev.ChainID)
	if err != nil {
		return ResultApplied, err
	}
	if ok && ev.Position().Less(last.Position) {
		return ResultApplied, fmt.Errorf("%w: chain %d event %d/%d after %d/%d", ErrOutOfOrder,
			ev.ChainID, ev.BlockNumber, ev.LogIndex, last.Position.BlockNumber, last.Position.LogIndex)
	}
	if ok && ev.Position() == last.Position && !strings.EqualFold(ev.TxHash, last.TxHash) {
		r.logger.Warn("inconsistency: position already taken by another transaction",
			zap.Uint64("chain_id", ev.ChainID),
			zap.Uint64("block", ev.BlockNumber),
			zap.Uint64("log_index", ev.LogIndex),
			zap.String("tx", ev.TxHash),
			zap.String("cursor_tx", last.TxHash),
		)
	}

	unit := storage.NewUnit(r.store)
	hc := handler.NewContext(ev, unit, r.logger)
	handle, mapped := r.registry.Lookup(ev.EventName)
	if mapped {
		if err := handle(ctx, hc); err != nil {
			return ResultApplied, fmt.Errorf("apply %s %s: %w", ev.EventName, auditKey.ID, err)
		}
	} else {
		hc.Logger.Info("unmapped event audited")
	}

	audit := model.NewEvent(ev, mapped)
	if err := unit.Put(&audit); err != nil {
		return ResultApplied, err
	}
	cursor := model.Cursor{
		ID:        model.CursorKey(ev.ChainID).ID,
		ChainID:   ev.ChainID,
		Position:  ev.Position(),
		TxHash:    ev.TxHash,
		UpdatedAt: ev.Timestamp,
	}
	if err := unit.Put(&cursor); err != nil {
		return ResultApplied, err
	}

	if err := r.committer.Commit(ctx, ev.ChainID, unit, *hc.Delta, ev.Timestamp); err != nil {
		return ResultApplied, fmt.Errorf("commit %s: %w", auditKey.ID, err)
	}

	r.mu.Lock()
	r.cursors[ev.ChainID] = cursor
	r.mu.Unlock()
	return ResultApplied, nil
}

func (r *Router) cursor(ctx context.Context, chainID uint64) (model.Cursor, bool, error) {
	r.mu.Lock()
	cached, ok := r.cursors[chainID]
	r.mu.Unlock()
	if ok {
		return cached, true, nil
	}

	var cursor model.Cursor
	rec, found, err := r.store.Get(ctx, model.CursorKey(chainID))
	if err != nil {
		return model.Cursor{}, false, fmt.Errorf("load cursor for chain %d: %w", chainID, err)
	}
	if !found {
		return model.Cursor{}, false, nil
	}
	if err := rec.Decode(&cursor); err != nil {
		return model.Cursor{}, false, err
	}

	r.mu.Lock()
	r.cursors[chainID] = cursor
	r.mu.Unlock()
	return cursor, true, nil
}
