package model

import "fmt"

// Kind names an entity type in the store.
type Kind string

const (
	KindPool         Kind = "pool"
	KindCreator      Kind = "creator"
	KindPlayer       Kind = "player"
	KindPlayerPool   Kind = "player_pool"
	KindGameRound    Kind = "game_round"
	KindPlayerChoice Kind = "player_choice"
	KindStakeEvent   Kind = "stake_event"
	KindEvent        Kind = "event"
	KindSystemStats  Kind = "system_stats"
	KindNetworkStats Kind = "network_stats"
	KindCursor       Kind = "cursor"
)

// Kinds lists every entity kind.
var Kinds = []Kind{
	KindPool, KindCreator, KindPlayer, KindPlayerPool, KindGameRound, KindPlayerChoice,
	KindStakeEvent, KindEvent, KindSystemStats, KindNetworkStats, KindCursor,
}

// IndexFields lists the StoreIndexes names of each kind. Kinds without an entry
// cannot be filtered.
var IndexFields = map[Kind][]string{
	KindPool:         {"status", "creator"},
	KindCreator:      {"verified"},
	KindPlayerPool:   {"pool", "player"},
	KindGameRound:    {"pool"},
	KindPlayerChoice: {"pool", "pool_round", "player", "round"},
	KindStakeEvent:   {"creator", "type"},
	KindEvent:        {"type", "pool", "player", "creator"},
}

// IsIndexField reports whether kind can be filtered on field.
func IsIndexField(kind Kind, field string) bool {
	for _, f := range IndexFields[kind] {
		if f == field {
			return true
		}
	}
	return false
}

// GlobalChainID partitions entities that span every chain.
const GlobalChainID uint64 = 0

// Key addresses one entity. The chain id partitions the key space; ids are only unique within
// (kind, chain).
type Key struct {
	Kind    Kind   `json:"kind"`
	ChainID uint64 `json:"chain_id"`
	ID      string `json:"id"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%s", k.Kind, k.ChainID, k.ID)
}

// Entity is a storable projection row.
type Entity interface {
	StoreKey() Key
	// StoreIndexes returns the fields the store can filter on.
	StoreIndexes() map[string]string
}

// ParseKind validates a kind name.
func ParseKind(name string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == name {
			return k, true
		}
	}
	return "", false
}
