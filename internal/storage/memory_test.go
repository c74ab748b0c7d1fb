package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"minorityScope/internal/model"
)

func TestMemoryStoreListFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	p1 := model.NewPool(56, "1", "0xA", model.AmountFromUint64(10), 4, 100, 1)
	p2 := model.NewPool(56, "2", "0xB", model.AmountFromUint64(10), 4, 100, 1)
	p3 := model.NewPool(137, "1", "0xA", model.AmountFromUint64(10), 4, 100, 1)
	p2.Status = model.PoolStatusActive

	var records []Record
	for _, p := range []*model.Pool{&p1, &p2, &p3} {
		rec, err := NewRecord(p)
		require.NoError(t, err)
		records = append(records, rec)
	}
	require.NoError(t, store.Commit(ctx, records))
	require.Equal(t, 3, store.Len())

	chain := uint64(56)
	opened, err := store.List(ctx, Query{Kind: model.KindPool, ChainID: &chain, Match: map[string]string{"status": "Opened"}})
	require.NoError(t, err)
	require.Len(t, opened, 1)
	require.Equal(t, "1", opened[0].Key.ID)

	byCreator, err := store.List(ctx, Query{Kind: model.KindPool, Match: map[string]string{"creator": "0xa"}})
	require.NoError(t, err)
	require.Len(t, byCreator, 2)
	require.Equal(t, uint64(56), byCreator[0].Key.ChainID)

	limited, err := store.List(ctx, Query{Kind: model.KindPool, Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := model.NewPool(1, "9", "0xA", model.AmountFromUint64(1), 2, 0, 0)
	rec, err := NewRecord(&p)
	require.NoError(t, err)
	require.NoError(t, store.Commit(ctx, []Record{rec}))

	got, ok, err := store.Get(ctx, p.StoreKey())
	require.NoError(t, err)
	require.True(t, ok)
	got.Data[0] = 'x'

	var loaded model.Pool
	require.NoError(t, Load(ctx, store, p.StoreKey(), &loaded))
	require.Equal(t, "9", loaded.ID)

	err = Load(ctx, store, model.PoolKey(1, "missing"), &loaded)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUnitReadsOwnWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	unit := NewUnit(store)

	var pool model.Pool
	created, err := unit.GetOrCreate(ctx, model.PoolKey(5, "3"), &pool, func() {
		pool = model.NewPool(5, "3", "0xC", model.AmountFromUint64(7), 2, 10, 1)
	})
	require.NoError(t, err)
	require.True(t, created)
	pool.CurrentPlayers = 1
	require.NoError(t, unit.Put(&pool))

	var again model.Pool
	created, err = unit.GetOrCreate(ctx, model.PoolKey(5, "3"), &again, func() {
		t.Fatal("init must not run for a staged entity")
	})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, uint64(1), again.CurrentPlayers)

	// nothing reaches the store before commit
	_, ok, err := store.Get(ctx, model.PoolKey(5, "3"))
	require.NoError(t, err)
	require.False(t, ok)

	again.CurrentPlayers = 2
	require.NoError(t, unit.Put(&again))
	require.Equal(t, 1, unit.Len())
	require.NoError(t, store.Commit(ctx, unit.Writes()))

	var stored model.Pool
	require.NoError(t, Load(ctx, store, model.PoolKey(5, "3"), &stored))
	require.Equal(t, uint64(2), stored.CurrentPlayers)
}

func TestUnitListOverlaysStagedWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	c1 := model.NewPlayerChoice(1, "0xA", "1", 1, model.ChoiceHeads, 0, 0)
	c2 := model.NewPlayerChoice(1, "0xB", "1", 1, model.ChoiceTails, 0, 0)
	rec1, err := NewRecord(&c1)
	require.NoError(t, err)
	require.NoError(t, store.Commit(ctx, []Record{rec1}))

	unit := NewUnit(store)
	c1.WasWinningChoice = true
	require.NoError(t, unit.Put(&c1))
	require.NoError(t, unit.Put(&c2))

	got, err := unit.List(ctx, Query{Kind: model.KindPlayerChoice, Match: map[string]string{"pool_round": "1-1"}})
	require.NoError(t, err)
	require.Len(t, got, 2)

	var first model.PlayerChoice
	require.NoError(t, got[0].Decode(&first))
	require.Equal(t, "0xa", first.Player)
	require.True(t, first.WasWinningChoice)
}
