package handler

import (
	"context"

	"go.uber.org/zap"

	"minorityScope/internal/identity"
	"minorityScope/internal/model"
)

// PoolCreated opens a pool and credits its creator.
func PoolCreated(ctx context.Context, hc *Context) error {
	poolID, err := hc.str("poolId")
	if err != nil {
		return err
	}
	creatorAddr, err := hc.str("creator")
	if err != nil {
		return err
	}
	entryFee, err := hc.amount("entryFee")
	if err != nil {
		return err
	}
	maxPlayers, err := hc.uint("maxPlayers")
	if err != nil {
		return err
	}

	key := model.PoolKey(hc.ChainID(), poolID)
	exists, err := hc.Unit.Exists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		hc.inconsistency("pool created twice", zap.String("pool", key.ID))
		return nil
	}

	var creator model.Creator
	if _, err := hc.Unit.GetOrCreate(ctx, model.CreatorKey(hc.ChainID(), creatorAddr), &creator, func() {
		creator = model.NewCreator(hc.ChainID(), creatorAddr, hc.Time())
	}); err != nil {
		return err
	}
	creator.TotalPoolsCreated++
	creator.Touch(hc.Time())
	if err := hc.put(&creator); err != nil {
		return err
	}

	pool := model.NewPool(hc.ChainID(), poolID, creatorAddr, entryFee, maxPlayers, hc.Time(), hc.Block())
	if err := hc.put(&pool); err != nil {
		return err
	}
	hc.Delta.PoolsCreated++
	return nil
}

// PoolActivated moves a pool to Active once it is full.
func PoolActivated(ctx context.Context, hc *Context) error {
	poolID, err := hc.str("poolId")
	if err != nil {
		return err
	}
	totalPlayers, err := hc.uint("totalPlayers")
	if err != nil {
		return err
	}
	prizePool, err := hc.amount("prizePool")
	if err != nil {
		return err
	}

	var pool model.Pool
	found, err := hc.load(ctx, model.PoolKey(hc.ChainID(), poolID), &pool)
	if err != nil || !found {
		return err
	}

	from := pool.Status
	if !model.CanTransition(from, model.PoolStatusActive) {
		hc.inconsistency("unexpected pool transition",
			zap.String("pool", pool.ID), zap.String("from", string(from)), zap.String("to", string(model.PoolStatusActive)))
	}
	pool.Status = model.PoolStatusActive
	pool.ActivatedAt = hc.Time()
	pool.ActivatedBlock = hc.Block()
	pool.PrizePool = prizePool
	pool.CurrentPlayers = totalPlayers
	pool.CurrentRound = 1
	pool.UpdatedAt = hc.Time()
	if err := hc.put(&pool); err != nil {
		return err
	}

	if from != model.PoolStatusActive {
		hc.Delta.Transition(from, model.PoolStatusActive)
		hc.Delta.AddVolume(prizePool)
	}
	return nil
}

// GameCompleted closes a pool and pays its winner.
func GameCompleted(ctx context.Context, hc *Context) error {
	poolID, err := hc.str("poolId")
	if err != nil {
		return err
	}
	winner, err := hc.str("winner")
	if err != nil {
		return err
	}
	prize, err := hc.amount("prizeAmount")
	if err != nil {
		return err
	}

	var pool model.Pool
	found, err := hc.load(ctx, model.PoolKey(hc.ChainID(), poolID), &pool)
	if err != nil {
		return err
	}
	if found {
		from := pool.Status
		if from == model.PoolStatusCompleted {
			hc.inconsistency("pool completed twice", zap.String("pool", pool.ID))
			return nil
		}
		if !model.CanTransition(from, model.PoolStatusCompleted) {
			hc.inconsistency("unexpected pool transition",
				zap.String("pool", pool.ID), zap.String("from", string(from)), zap.String("to", string(model.PoolStatusCompleted)))
		}
		winnerAddr := identity.Address(winner)
		prizeCopy := prize
		pool.Status = model.PoolStatusCompleted
		pool.Winner = &winnerAddr
		pool.PrizeAmount = &prizeCopy
		pool.CompletedAt = hc.Time()
		pool.CompletedBlock = hc.Block()
		pool.UpdatedAt = hc.Time()
		if err := hc.put(&pool); err != nil {
			return err
		}
		hc.Delta.Transition(from, model.PoolStatusCompleted)

		var creator model.Creator
		found, err := hc.load(ctx, model.CreatorKey(hc.ChainID(), pool.Creator), &creator)
		if err != nil {
			return err
		}
		if found {
			creator.CompletedPools++
			creator.Touch(hc.Time())
			if err := hc.put(&creator); err != nil {
				return err
			}
		}
	}

	var entry model.PlayerPool
	found, err = hc.load(ctx, model.PlayerPoolKey(hc.ChainID(), winner, poolID), &entry)
	if err != nil {
		return err
	}
	if found {
		entry.HasWon = true
		entry.PrizeAmount = prize
		entry.PrizeClaimed = true
		if err := hc.put(&entry); err != nil {
			return err
		}
	}

	var player model.Player
	found, err = hc.load(ctx, model.PlayerKey(hc.ChainID(), winner), &player)
	if err != nil {
		return err
	}
	if found {
		player.TotalPoolsWon++
		player.TotalEarnings = player.TotalEarnings.Add(prize)
		player.Touch(hc.Time())
		if err := hc.put(&player); err != nil {
			return err
		}
	}

	hc.Delta.AddPrize(prize)
	return nil
}

// PoolAbandoned cancels a pool and marks its entries refunded.
func PoolAbandoned(ctx context.Context, hc *Context) error {
	poolID, err := hc.str("poolId")
	if err != nil {
		return err
	}

	var pool model.Pool
	found, err := hc.load(ctx, model.PoolKey(hc.ChainID(), poolID), &pool)
	if err != nil || !found {
		return err
	}

	from := pool.Status
	if from == model.PoolStatusAbandoned {
		hc.inconsistency("pool abandoned twice", zap.String("pool", pool.ID))
		return nil
	}
	if !model.CanTransition(from, model.PoolStatusAbandoned) {
		hc.inconsistency("unexpected pool transition",
			zap.String("pool", pool.ID), zap.String("from", string(from)), zap.String("to", string(model.PoolStatusAbandoned)))
	}
	pool.Status = model.PoolStatusAbandoned
	pool.AbandonedAt = hc.Time()
	pool.AbandonedBlock = hc.Block()
	pool.UpdatedAt = hc.Time()
	if err := hc.put(&pool); err != nil {
		return err
	}
	hc.Delta.Transition(from, model.PoolStatusAbandoned)

	creatorAddr := pool.Creator
	if v, ok := hc.Event.Field("creator"); ok {
		creatorAddr = v
	}
	var creator model.Creator
	found, err = hc.load(ctx, model.CreatorKey(hc.ChainID(), creatorAddr), &creator)
	if err != nil {
		return err
	}
	if found {
		creator.AbandonedPools++
		creator.Touch(hc.Time())
		if err := hc.put(&creator); err != nil {
			return err
		}
	}

	return markRefunded(ctx, hc, pool.ID)
}

func markRefunded(ctx context.Context, hc *Context, poolID string) error {
	chainID := hc.ChainID()
	entries, err := listPlayerPools(ctx, hc, chainID, poolID)
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].Refunded {
			continue
		}
		entries[i].Refunded = true
		if err := hc.put(&entries[i]); err != nil {
			return err
		}
	}
	if refunded, err := hc.Event.Uint("refundedPlayers"); err == nil && refunded != uint64(len(entries)) {
		hc.inconsistency("refunded player count differs from indexed joins",
			zap.String("pool", poolID), zap.Uint64("refunded", refunded), zap.Int("joins", len(entries)))
	}
	return nil
}
