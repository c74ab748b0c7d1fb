package handler

import (
	"context"

	"go.uber.org/zap"

	"minorityScope/internal/identity"
	"minorityScope/internal/model"
)

// PlayerMadeChoice tallies a pick for a round. Only the first pick of a
// (player, pool, round) triple counts.
func PlayerMadeChoice(ctx context.Context, hc *Context) error {
	poolID, err := hc.str("poolId")
	if err != nil {
		return err
	}
	playerAddr, err := hc.str("player")
	if err != nil {
		return err
	}
	choice, err := hc.choice("choice")
	if err != nil {
		return err
	}
	round, err := hc.uint("round")
	if err != nil {
		return err
	}

	var player model.Player
	found, err := hc.load(ctx, model.PlayerKey(hc.ChainID(), playerAddr), &player)
	if err != nil {
		return err
	}
	if found {
		player.Touch(hc.Time())
		if err := hc.put(&player); err != nil {
			return err
		}
	}

	choiceKey := model.PlayerChoiceKey(hc.ChainID(), playerAddr, poolID, round)
	exists, err := hc.Unit.Exists(ctx, choiceKey)
	if err != nil {
		return err
	}
	if exists {
		hc.Logger.Warn("duplicate choice ignored", zap.String("player_choice", choiceKey.ID))
		return nil
	}

	var gameRound model.GameRound
	if _, err := hc.Unit.GetOrCreate(ctx, model.GameRoundKey(hc.ChainID(), poolID, round), &gameRound, func() {
		gameRound = model.NewGameRound(hc.ChainID(), poolID, round)
	}); err != nil {
		return err
	}
	if gameRound.Resolved {
		hc.inconsistency("choice after round resolution", zap.String("round", gameRound.ID))
	}
	gameRound.Count(choice)
	if err := hc.put(&gameRound); err != nil {
		return err
	}

	pick := model.NewPlayerChoice(hc.ChainID(), playerAddr, poolID, round, choice, hc.Time(), hc.Block())
	if gameRound.Resolved && gameRound.WinningChoice != nil {
		pick.WasWinningChoice = pick.Choice == *gameRound.WinningChoice
	}
	return hc.put(&pick)
}

// RoundResolved finalizes a round, flags each pick as winning or not and eliminates
// the players who picked the losing side.
func RoundResolved(ctx context.Context, hc *Context) error {
	poolID, err := hc.str("poolId")
	if err != nil {
		return err
	}
	round, err := hc.uint("round")
	if err != nil {
		return err
	}
	winning, err := hc.choice("winningChoice")
	if err != nil {
		return err
	}
	eliminated, err := hc.uint("eliminatedCount")
	if err != nil {
		return err
	}
	remaining, err := hc.uint("remainingCount")
	if err != nil {
		return err
	}

	var gameRound model.GameRound
	if _, err := hc.Unit.GetOrCreate(ctx, model.GameRoundKey(hc.ChainID(), poolID, round), &gameRound, func() {
		gameRound = model.NewGameRound(hc.ChainID(), poolID, round)
	}); err != nil {
		return err
	}
	if gameRound.Resolved {
		hc.inconsistency("round resolved twice", zap.String("round", gameRound.ID))
	}
	gameRound.Resolved = true
	gameRound.WinningChoice = &winning
	gameRound.EliminatedCount = eliminated
	gameRound.RemainingCount = remaining
	gameRound.ResolvedAt = hc.Time()
	gameRound.ResolvedBlock = hc.Block()
	if err := hc.put(&gameRound); err != nil {
		return err
	}

	var pool model.Pool
	found, err := hc.load(ctx, model.PoolKey(hc.ChainID(), poolID), &pool)
	if err != nil {
		return err
	}
	if found {
		pool.CurrentRound = round + 1
		pool.UpdatedAt = hc.Time()
		if err := hc.put(&pool); err != nil {
			return err
		}
	}

	picks, err := listRoundChoices(ctx, hc, hc.ChainID(), identity.RoundID(poolID, round))
	if err != nil {
		return err
	}
	for i := range picks {
		pick := &picks[i]
		pick.WasWinningChoice = pick.Choice == winning
		if err := hc.put(pick); err != nil {
			return err
		}
		if !pick.WasWinningChoice {
			if err := eliminate(ctx, hc, pick.Player, poolID, round); err != nil {
				return err
			}
		}
	}
	return nil
}

func eliminate(ctx context.Context, hc *Context, playerAddr, poolID string, round uint64) error {
	var entry model.PlayerPool
	found, err := hc.load(ctx, model.PlayerPoolKey(hc.ChainID(), playerAddr, poolID), &entry)
	if err != nil || !found || entry.IsEliminated {
		return err
	}
	entry.IsEliminated = true
	entry.EliminatedRound = round
	if err := hc.put(&entry); err != nil {
		return err
	}

	var player model.Player
	found, err = hc.load(ctx, model.PlayerKey(hc.ChainID(), playerAddr), &player)
	if err != nil || !found {
		return err
	}
	player.TotalPoolsEliminated++
	return hc.put(&player)
}
