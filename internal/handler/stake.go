package handler

import (
	"context"

	"go.uber.org/zap"

	"minorityScope/internal/identity"
	"minorityScope/internal/model"
)

// StakeDeposited credits a creator's stake.
func StakeDeposited(ctx context.Context, hc *Context) error {
	creatorAddr, err := hc.str("creator")
	if err != nil {
		return err
	}
	amount, err := hc.amount("amount")
	if err != nil {
		return err
	}
	eligible, err := hc.uint("poolsEligible")
	if err != nil {
		return err
	}

	var creator model.Creator
	if _, err := hc.Unit.GetOrCreate(ctx, model.CreatorKey(hc.ChainID(), creatorAddr), &creator, func() {
		creator = model.NewCreator(hc.ChainID(), creatorAddr, hc.Time())
	}); err != nil {
		return err
	}
	creator.TotalStaked = creator.TotalStaked.Add(amount)
	creator.TotalPoolsEligible = eligible
	creator.Touch(hc.Time())
	if err := hc.put(&creator); err != nil {
		return err
	}

	ledger := stakeEvent(hc, creator.ID, model.StakeDeposit, amount, nil, eligible)
	if err := hc.put(&ledger); err != nil {
		return err
	}
	hc.Delta.AddStaked(amount)
	return nil
}

// StakeWithdrawn debits a creator's stake. A withdrawal larger than the indexed
// balance is clamped so the balance never goes negative.
func StakeWithdrawn(ctx context.Context, hc *Context) error {
	creatorAddr, err := hc.str("creator")
	if err != nil {
		return err
	}
	amount, err := hc.amount("amount")
	if err != nil {
		return err
	}
	var penalty *model.Amount
	if _, ok := hc.Event.Field("penalty"); ok {
		p, err := hc.amount("penalty")
		if err != nil {
			return err
		}
		penalty = &p
	}

	ledger := stakeEvent(hc, identity.Address(creatorAddr), model.StakeWithdraw, amount, penalty, 0)
	if err := hc.put(&ledger); err != nil {
		return err
	}

	var creator model.Creator
	found, err := hc.load(ctx, model.CreatorKey(hc.ChainID(), creatorAddr), &creator)
	if err != nil || !found {
		return err
	}
	applied := amount.Min(creator.TotalStaked)
	if applied.Cmp(amount) != 0 {
		hc.inconsistency("withdrawal exceeds staked balance, clamping",
			zap.String("creator", creator.ID),
			zap.Stringer("amount", amount),
			zap.Stringer("staked", creator.TotalStaked))
	}
	creator.TotalStaked = creator.TotalStaked.Sub(applied)
	creator.TotalPoolsEligible = 0
	creator.Touch(hc.Time())
	if err := hc.put(&creator); err != nil {
		return err
	}
	hc.Delta.AddStaked(applied.Neg())
	return nil
}

func stakeEvent(hc *Context, creator string, kind model.StakeType, amount model.Amount, penalty *model.Amount, eligible uint64) model.StakeEvent {
	return model.StakeEvent{
		ID:            identity.EventID(hc.Event.TxHash, hc.Event.LogIndex),
		ChainID:       hc.ChainID(),
		Creator:       creator,
		Type:          kind,
		Amount:        amount,
		Penalty:       penalty,
		PoolsEligible: eligible,
		Timestamp:     hc.Time(),
		BlockNumber:   hc.Block(),
		TxHash:        hc.Event.TxHash,
	}
}
