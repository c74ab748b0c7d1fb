package model

import "minorityScope/internal/identity"

// StakeEvent is an append-only ledger row for creator stake movements.
type StakeEvent struct {
	ID            string    `json:"id"`
	ChainID       uint64    `json:"chain_id"`
	Creator       string    `json:"creator"`
	Type          StakeType `json:"type"`
	Amount        Amount    `json:"amount"`
	Penalty       *Amount   `json:"penalty,omitempty"`
	PoolsEligible uint64    `json:"pools_eligible"`
	Timestamp     uint64    `json:"timestamp"`
	BlockNumber   uint64    `json:"block_number"`
	TxHash        string    `json:"tx_hash"`
}

func StakeEventKey(chainID uint64, txHash string, logIndex uint64) Key {
	return Key{Kind: KindStakeEvent, ChainID: chainID, ID: identity.EventID(txHash, logIndex)}
}

func (s *StakeEvent) StoreKey() Key {
	return Key{Kind: KindStakeEvent, ChainID: s.ChainID, ID: s.ID}
}

func (s *StakeEvent) StoreIndexes() map[string]string {
	return map[string]string{"creator": s.Creator, "type": string(s.Type)}
}
