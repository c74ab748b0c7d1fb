package model

import (
	"strconv"

	"minorityScope/internal/identity"
)

// GameRound summarizes one elimination phase of a pool.
type GameRound struct {
	ID              string  `json:"id"`
	ChainID         uint64  `json:"chain_id"`
	PoolID          string  `json:"pool_id"`
	Round           uint64  `json:"round"`
	Resolved        bool    `json:"resolved"`
	WinningChoice   *Choice `json:"winning_choice,omitempty"`
	EliminatedCount uint64  `json:"eliminated_count"`
	RemainingCount  uint64  `json:"remaining_count"`
	ResolvedAt      uint64  `json:"resolved_at,omitempty"`
	ResolvedBlock   uint64  `json:"resolved_block,omitempty"`
	HeadsCount      uint64  `json:"heads_count"`
	TailsCount      uint64  `json:"tails_count"`
}

func NewGameRound(chainID uint64, poolID string, round uint64) GameRound {
	return GameRound{
		ID:      identity.RoundID(poolID, round),
		ChainID: chainID,
		PoolID:  identity.PoolID(poolID),
		Round:   round,
	}
}

func GameRoundKey(chainID uint64, poolID string, round uint64) Key {
	return Key{Kind: KindGameRound, ChainID: chainID, ID: identity.RoundID(poolID, round)}
}

func (r *GameRound) StoreKey() Key { return GameRoundKey(r.ChainID, r.PoolID, r.Round) }

func (r *GameRound) StoreIndexes() map[string]string {
	return map[string]string{"pool": r.PoolID}
}

// Count increments the tally for choice.
func (r *GameRound) Count(choice Choice) {
	switch choice {
	case ChoiceHeads:
		r.HeadsCount++
	case ChoiceTails:
		r.TailsCount++
	}
}

// PlayerChoice is a player's pick for one round of one pool.
type PlayerChoice struct {
	ID               string `json:"id"`
	ChainID          uint64 `json:"chain_id"`
	Player           string `json:"player"`
	PoolID           string `json:"pool_id"`
	Round            uint64 `json:"round"`
	Choice           Choice `json:"choice"`
	WasWinningChoice bool   `json:"was_winning_choice"`
	MadeAt           uint64 `json:"made_at"`
	MadeBlock        uint64 `json:"made_block"`
}

func NewPlayerChoice(chainID uint64, player, poolID string, round uint64, choice Choice, at, block uint64) PlayerChoice {
	return PlayerChoice{
		ID:        identity.ChoiceID(player, poolID, round),
		ChainID:   chainID,
		Player:    identity.Address(player),
		PoolID:    identity.PoolID(poolID),
		Round:     round,
		Choice:    choice,
		MadeAt:    at,
		MadeBlock: block,
	}
}

func PlayerChoiceKey(chainID uint64, player, poolID string, round uint64) Key {
	return Key{Kind: KindPlayerChoice, ChainID: chainID, ID: identity.ChoiceID(player, poolID, round)}
}

func (c *PlayerChoice) StoreKey() Key {
	return PlayerChoiceKey(c.ChainID, c.Player, c.PoolID, c.Round)
}

func (c *PlayerChoice) StoreIndexes() map[string]string {
	return map[string]string{
		"pool":       c.PoolID,
		"pool_round": identity.RoundID(c.PoolID, c.Round),
		"player":     c.Player,
		"round":      strconv.FormatUint(c.Round, 10),
	}
}
