package model

import "minorityScope/internal/identity"

// Cursor tracks the last applied event position of a chain.
type Cursor struct {
	ID        string   `json:"id"`
	ChainID   uint64   `json:"chain_id"`
	Position  Position `json:"position"`
	TxHash    string   `json:"tx_hash"`
	UpdatedAt uint64   `json:"updated_at"`
}

func CursorKey(chainID uint64) Key {
	return Key{Kind: KindCursor, ChainID: chainID, ID: identity.ChainID(chainID)}
}

func (c *Cursor) StoreKey() Key { return CursorKey(c.ChainID) }

func (c *Cursor) StoreIndexes() map[string]string { return nil }
