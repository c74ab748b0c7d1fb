package model

import "minorityScope/internal/identity"

// SystemStatsID is the id of the global stats singleton.
const SystemStatsID = "global"

// Counters is the rolling summary kept both per chain and globally.
type Counters struct {
	TotalPoolsCreated    uint64 `json:"total_pools_created"`
	TotalPoolsActive     uint64 `json:"total_pools_active"`
	TotalPoolsCompleted  uint64 `json:"total_pools_completed"`
	TotalPoolsAbandoned  uint64 `json:"total_pools_abandoned"`
	TotalPlayers         uint64 `json:"total_players"`
	TotalPlayerJoins     uint64 `json:"total_player_joins"`
	TotalVolumeProcessed Amount `json:"total_volume_processed"`
	TotalPrizesAwarded   Amount `json:"total_prizes_awarded"`
	TotalCreatorRewards  Amount `json:"total_creator_rewards"`
	TotalStaked          Amount `json:"total_staked"`
	TotalProjectPool     Amount `json:"total_project_pool"`
}

// SystemStats aggregates every chain.
type SystemStats struct {
	ID string `json:"id"`
	Counters
	LastUpdatedAt uint64 `json:"last_updated_at"`
}

func NewSystemStats() SystemStats {
	return SystemStats{ID: SystemStatsID}
}

func SystemStatsKey() Key {
	return Key{Kind: KindSystemStats, ChainID: GlobalChainID, ID: SystemStatsID}
}

func (s *SystemStats) StoreKey() Key { return SystemStatsKey() }

func (s *SystemStats) StoreIndexes() map[string]string { return nil }

// NetworkStats aggregates one chain.
type NetworkStats struct {
	ID      string `json:"id"`
	ChainID uint64 `json:"chain_id"`
	Counters
	LastUpdatedAt uint64 `json:"last_updated_at"`
}

func NewNetworkStats(chainID uint64) NetworkStats {
	return NetworkStats{ID: identity.ChainID(chainID), ChainID: chainID}
}

func NetworkStatsKey(chainID uint64) Key {
	return Key{Kind: KindNetworkStats, ChainID: chainID, ID: identity.ChainID(chainID)}
}

func (s *NetworkStats) StoreKey() Key { return NetworkStatsKey(s.ChainID) }

func (s *NetworkStats) StoreIndexes() map[string]string { return nil }
