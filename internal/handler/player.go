package handler

import (
	"context"

	"go.uber.org/zap"

	"minorityScope/internal/model"
)

// PlayerJoined records a paid entry. The pool's player count comes from the payload.
func PlayerJoined(ctx context.Context, hc *Context) error {
	poolID, err := hc.str("poolId")
	if err != nil {
		return err
	}
	playerAddr, err := hc.str("player")
	if err != nil {
		return err
	}
	currentPlayers, err := hc.uint("currentPlayers")
	if err != nil {
		return err
	}
	if _, ok := hc.Event.Fields["maxPlayers"]; ok {
		maxPlayers, err := hc.uint("maxPlayers")
		if err != nil {
			return err
		}
		if currentPlayers > maxPlayers {
			hc.inconsistency("pool over capacity in payload",
				zap.Uint64("current_players", currentPlayers), zap.Uint64("max_players", maxPlayers))
		}
	}

	var pool model.Pool
	poolFound, err := hc.load(ctx, model.PoolKey(hc.ChainID(), poolID), &pool)
	if err != nil {
		return err
	}
	if poolFound {
		if currentPlayers > pool.MaxPlayers {
			hc.inconsistency("pool over capacity",
				zap.String("pool", pool.ID), zap.Uint64("current_players", currentPlayers), zap.Uint64("max_players", pool.MaxPlayers))
		}
		pool.CurrentPlayers = currentPlayers
		pool.PrizePool = pool.EntryFee.Mul(model.AmountFromUint64(currentPlayers))
		pool.UpdatedAt = hc.Time()
		if err := hc.put(&pool); err != nil {
			return err
		}
	}

	entryKey := model.PlayerPoolKey(hc.ChainID(), playerAddr, poolID)
	joined, err := hc.Unit.Exists(ctx, entryKey)
	if err != nil {
		return err
	}
	if joined {
		hc.inconsistency("player joined pool twice", zap.String("player_pool", entryKey.ID))
		return nil
	}

	var player model.Player
	if _, err := hc.Unit.GetOrCreate(ctx, model.PlayerKey(hc.ChainID(), playerAddr), &player, func() {
		player = model.NewPlayer(hc.ChainID(), playerAddr, hc.Time())
	}); err != nil {
		return err
	}
	if player.TotalPoolsJoined == 0 {
		hc.Delta.Players++
	}
	player.TotalPoolsJoined++
	player.TotalSpent = player.TotalSpent.Add(pool.EntryFee)
	player.Touch(hc.Time())
	if err := hc.put(&player); err != nil {
		return err
	}

	entry := model.NewPlayerPool(hc.ChainID(), playerAddr, poolID, pool.EntryFee, hc.Time(), hc.Block())
	if err := hc.put(&entry); err != nil {
		return err
	}
	hc.Delta.PlayerJoins++
	return nil
}
