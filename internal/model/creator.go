package model

import "minorityScope/internal/identity"

// Creator is an address that stakes collateral to open pools.
type Creator struct {
	ID                     string `json:"id"`
	ChainID                uint64 `json:"chain_id"`
	TotalStaked            Amount `json:"total_staked"`
	TotalEarned            Amount `json:"total_earned"`
	TotalPoolsEligible     uint64 `json:"total_pools_eligible"`
	TotalPoolsCreated      uint64 `json:"total_pools_created"`
	IsVerified             bool   `json:"is_verified"`
	VerifiedAt             uint64 `json:"verified_at,omitempty"`
	VerifiedBlock          uint64 `json:"verified_block,omitempty"`
	AttestationID          string `json:"attestation_id,omitempty"`
	VerificationBonusPools uint64 `json:"verification_bonus_pools"`
	CompletedPools         uint64 `json:"completed_pools"`
	AbandonedPools         uint64 `json:"abandoned_pools"`
	FirstSeenAt            uint64 `json:"first_seen_at"`
	LastActiveAt           uint64 `json:"last_active_at"`
}

func NewCreator(chainID uint64, address string, at uint64) Creator {
	return Creator{
		ID:           identity.Address(address),
		ChainID:      chainID,
		FirstSeenAt:  at,
		LastActiveAt: at,
	}
}

func CreatorKey(chainID uint64, address string) Key {
	return Key{Kind: KindCreator, ChainID: chainID, ID: identity.Address(address)}
}

func (c *Creator) StoreKey() Key { return CreatorKey(c.ChainID, c.ID) }

func (c *Creator) StoreIndexes() map[string]string {
	if c.IsVerified {
		return map[string]string{"verified": "true"}
	}
	return map[string]string{"verified": "false"}
}

// Touch refreshes the activity timestamp.
func (c *Creator) Touch(at uint64) {
	if at > c.LastActiveAt {
		c.LastActiveAt = at
	}
}
