package model

import "minorityScope/internal/identity"

// Event is the append-only audit row written for every chain event.
type Event struct {
	ID          string            `json:"id"`
	ChainID     uint64            `json:"chain_id"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	PoolID      *string           `json:"pool_id,omitempty"`
	Player      *string           `json:"player,omitempty"`
	Creator     *string           `json:"creator,omitempty"`
	RawData     map[string]string `json:"raw_data"`
	BlockNumber uint64            `json:"block_number"`
	LogIndex    uint64            `json:"log_index"`
	Timestamp   uint64            `json:"timestamp"`
	TxHash      string            `json:"tx_hash"`
}

// NewEvent maps a chain event to its audit row. References are taken from the
// conventional payload field names so unmapped events still link to entities.
func NewEvent(ev GameEvent, mapped bool) Event {
	eventType := ev.EventName
	if !mapped {
		eventType = EventUnmapped
	}

	raw := make(map[string]string, len(ev.Fields))
	for k, v := range ev.Fields {
		raw[k] = v
	}

	out := Event{
		ID:          identity.EventID(ev.TxHash, ev.LogIndex),
		ChainID:     ev.ChainID,
		Type:        eventType,
		Name:        ev.EventName,
		RawData:     raw,
		BlockNumber: ev.BlockNumber,
		LogIndex:    ev.LogIndex,
		Timestamp:   ev.Timestamp,
		TxHash:      ev.TxHash,
	}
	if v, ok := ev.Field("poolId"); ok {
		id := identity.PoolID(v)
		out.PoolID = &id
	}
	for _, name := range []string{"player", "winner"} {
		if v, ok := ev.Field(name); ok {
			addr := identity.Address(v)
			out.Player = &addr
			break
		}
	}
	if v, ok := ev.Field("creator"); ok {
		addr := identity.Address(v)
		out.Creator = &addr
	}
	return out
}

func EventKey(chainID uint64, txHash string, logIndex uint64) Key {
	return Key{Kind: KindEvent, ChainID: chainID, ID: identity.EventID(txHash, logIndex)}
}

func (e *Event) StoreKey() Key { return Key{Kind: KindEvent, ChainID: e.ChainID, ID: e.ID} }

func (e *Event) StoreIndexes() map[string]string {
	out := map[string]string{"type": e.Type}
	if e.PoolID != nil {
		out["pool"] = *e.PoolID
	}
	if e.Player != nil {
		out["player"] = *e.Player
	}
	if e.Creator != nil {
		out["creator"] = *e.Creator
	}
	return out
}
