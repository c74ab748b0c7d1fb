package handler

import (
	"context"

	"minorityScope/internal/model"
	"minorityScope/internal/storage"
)

func listPlayerPools(ctx context.Context, hc *Context, chainID uint64, poolID string) ([]model.PlayerPool, error) {
	records, err := hc.Unit.List(ctx, storage.Query{
		Kind:    model.KindPlayerPool,
		ChainID: &chainID,
		Match:   map[string]string{"pool": poolID},
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.PlayerPool, len(records))
	for i, rec := range records {
		if err := rec.Decode(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func listRoundChoices(ctx context.Context, hc *Context, chainID uint64, roundID string) ([]model.PlayerChoice, error) {
	records, err := hc.Unit.List(ctx, storage.Query{
		Kind:    model.KindPlayerChoice,
		ChainID: &chainID,
		Match:   map[string]string{"pool_round": roundID},
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.PlayerChoice, len(records))
	for i, rec := range records {
		if err := rec.Decode(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
