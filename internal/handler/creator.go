package handler

import (
	"context"

	"minorityScope/internal/model"
)

// CreatorRewardClaimed credits the creator. The payout happened on chain, so
// the stats count it even when the creator was never indexed.
func CreatorRewardClaimed(ctx context.Context, hc *Context) error {
	creatorAddr, err := hc.str("creator")
	if err != nil {
		return err
	}
	amount, err := hc.amount("amount")
	if err != nil {
		return err
	}
	hc.Delta.AddCreatorReward(amount)

	var creator model.Creator
	found, err := hc.load(ctx, model.CreatorKey(hc.ChainID(), creatorAddr), &creator)
	if err != nil || !found {
		return err
	}
	creator.TotalEarned = creator.TotalEarned.Add(amount)
	creator.Touch(hc.Time())
	return hc.put(&creator)
}

func CreatorVerified(ctx context.Context, hc *Context) error {
	creatorAddr, err := hc.str("creator")
	if err != nil {
		return err
	}
	attestation, err := hc.str("attestationId")
	if err != nil {
		return err
	}

	var creator model.Creator
	found, err := hc.load(ctx, model.CreatorKey(hc.ChainID(), creatorAddr), &creator)
	if err != nil || !found {
		return err
	}
	creator.IsVerified = true
	creator.VerifiedAt = hc.Time()
	creator.VerifiedBlock = hc.Block()
	creator.AttestationID = attestation
	creator.Touch(hc.Time())
	return hc.put(&creator)
}

// VerificationBonusApplied stores the bonus pool allowance carried by the payload.
func VerificationBonusApplied(ctx context.Context, hc *Context) error {
	creatorAddr, err := hc.str("creator")
	if err != nil {
		return err
	}
	bonus, err := hc.uint("bonusPools")
	if err != nil {
		return err
	}

	var creator model.Creator
	found, err := hc.load(ctx, model.CreatorKey(hc.ChainID(), creatorAddr), &creator)
	if err != nil || !found {
		return err
	}
	creator.VerificationBonusPools = bonus
	creator.Touch(hc.Time())
	return hc.put(&creator)
}
