package model

import "minorityScope/internal/identity"

// Player is an address that joins pools.
type Player struct {
	ID                   string `json:"id"`
	ChainID              uint64 `json:"chain_id"`
	TotalPoolsJoined     uint64 `json:"total_pools_joined"`
	TotalPoolsWon        uint64 `json:"total_pools_won"`
	TotalPoolsEliminated uint64 `json:"total_pools_eliminated"`
	TotalEarnings        Amount `json:"total_earnings"`
	TotalSpent           Amount `json:"total_spent"`
	FirstJoinedAt        uint64 `json:"first_joined_at"`
	LastActiveAt         uint64 `json:"last_active_at"`
}

func NewPlayer(chainID uint64, address string, at uint64) Player {
	return Player{
		ID:            identity.Address(address),
		ChainID:       chainID,
		FirstJoinedAt: at,
		LastActiveAt:  at,
	}
}

func PlayerKey(chainID uint64, address string) Key {
	return Key{Kind: KindPlayer, ChainID: chainID, ID: identity.Address(address)}
}

func (p *Player) StoreKey() Key { return PlayerKey(p.ChainID, p.ID) }

func (p *Player) StoreIndexes() map[string]string { return nil }

func (p *Player) Touch(at uint64) {
	if at > p.LastActiveAt {
		p.LastActiveAt = at
	}
}

// PlayerPool records one player's participation in one pool.
type PlayerPool struct {
	ID              string `json:"id"`
	ChainID         uint64 `json:"chain_id"`
	Player          string `json:"player"`
	PoolID          string `json:"pool_id"`
	IsEliminated    bool   `json:"is_eliminated"`
	EliminatedRound uint64 `json:"eliminated_round,omitempty"`
	HasWon          bool   `json:"has_won"`
	JoinedAt        uint64 `json:"joined_at"`
	JoinedBlock     uint64 `json:"joined_block"`
	EntryFeePaid    Amount `json:"entry_fee_paid"`
	PrizeClaimed    bool   `json:"prize_claimed"`
	PrizeAmount     Amount `json:"prize_amount"`
	Refunded        bool   `json:"refunded"`
}

func NewPlayerPool(chainID uint64, player, poolID string, entryFee Amount, at, block uint64) PlayerPool {
	return PlayerPool{
		ID:           identity.PlayerPoolID(player, poolID),
		ChainID:      chainID,
		Player:       identity.Address(player),
		PoolID:       identity.PoolID(poolID),
		JoinedAt:     at,
		JoinedBlock:  block,
		EntryFeePaid: entryFee,
	}
}

func PlayerPoolKey(chainID uint64, player, poolID string) Key {
	return Key{Kind: KindPlayerPool, ChainID: chainID, ID: identity.PlayerPoolID(player, poolID)}
}

func (p *PlayerPool) StoreKey() Key { return PlayerPoolKey(p.ChainID, p.Player, p.PoolID) }

func (p *PlayerPool) StoreIndexes() map[string]string {
	return map[string]string{"pool": p.PoolID, "player": p.Player}
}
