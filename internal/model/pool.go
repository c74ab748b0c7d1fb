package model

import "minorityScope/internal/identity"

// Pool is one instance of the elimination game.
type Pool struct {
	ID             string     `json:"id"`
	ChainID        uint64     `json:"chain_id"`
	Creator        string     `json:"creator"`
	Status         PoolStatus `json:"status"`
	EntryFee       Amount     `json:"entry_fee"`
	MaxPlayers     uint64     `json:"max_players"`
	CurrentPlayers uint64     `json:"current_players"`
	PrizePool      Amount     `json:"prize_pool"`
	CurrentRound   uint64     `json:"current_round"`
	Winner         *string    `json:"winner,omitempty"`
	PrizeAmount    *Amount    `json:"prize_amount,omitempty"`
	CreatedAt      uint64     `json:"created_at"`
	CreatedBlock   uint64     `json:"created_block"`
	ActivatedAt    uint64     `json:"activated_at,omitempty"`
	ActivatedBlock uint64     `json:"activated_block,omitempty"`
	CompletedAt    uint64     `json:"completed_at,omitempty"`
	CompletedBlock uint64     `json:"completed_block,omitempty"`
	AbandonedAt    uint64     `json:"abandoned_at,omitempty"`
	AbandonedBlock uint64     `json:"abandoned_block,omitempty"`
	UpdatedAt      uint64     `json:"updated_at"`
}

// NewPool returns an Opened pool with zeroed counters.
func NewPool(chainID uint64, id, creator string, entryFee Amount, maxPlayers uint64, at, block uint64) Pool {
	return Pool{
		ID:           identity.PoolID(id),
		ChainID:      chainID,
		Creator:      identity.Address(creator),
		Status:       PoolStatusOpened,
		EntryFee:     entryFee,
		MaxPlayers:   maxPlayers,
		CreatedAt:    at,
		CreatedBlock: block,
		UpdatedAt:    at,
	}
}

func PoolKey(chainID uint64, id string) Key {
	return Key{Kind: KindPool, ChainID: chainID, ID: identity.PoolID(id)}
}

func (p *Pool) StoreKey() Key { return PoolKey(p.ChainID, p.ID) }

func (p *Pool) StoreIndexes() map[string]string {
	return map[string]string{"status": string(p.Status), "creator": p.Creator}
}
