package handler

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"minorityScope/internal/aggregate"
	"minorityScope/internal/model"
	"minorityScope/internal/storage"
)

const (
	chainID = 56
	oneEth  = "1000000000000000000"
)

type harness struct {
	t      *testing.T
	store  *storage.MemoryStore
	logger *zap.Logger
	logs   *observer.ObservedLogs
	seq    uint64
}

func newHarness(t *testing.T) *harness {
	core, logs := observer.New(zap.WarnLevel)
	return &harness{t: t, store: storage.NewMemoryStore(), logger: zap.New(core), logs: logs}
}

// apply runs the registered handler for name and commits its writes.
func (h *harness) apply(name string, fields map[string]string) aggregate.Delta {
	h.t.Helper()
	delta, err := h.try(name, fields)
	require.NoError(h.t, err)
	return delta
}

func (h *harness) try(name string, fields map[string]string) (aggregate.Delta, error) {
	h.seq++
	ev := model.GameEvent{
		ChainID:     chainID,
		BlockNumber: 100 + h.seq,
		TxHash:      fmt.Sprintf("0x%04x", h.seq),
		LogIndex:    0,
		EventName:   name,
		Timestamp:   1700000000 + h.seq,
		Fields:      fields,
	}
	handle, ok := Default().Lookup(name)
	require.True(h.t, ok, "no handler for %s", name)

	ctx := context.Background()
	hc := NewContext(ev, storage.NewUnit(h.store), h.logger)
	if err := handle(ctx, hc); err != nil {
		return aggregate.Delta{}, err
	}
	require.NoError(h.t, h.store.Commit(ctx, hc.Unit.Writes()))
	return *hc.Delta, nil
}

func (h *harness) load(key model.Key, dst any) {
	h.t.Helper()
	require.NoError(h.t, storage.Load(context.Background(), h.store, key, dst))
}

func (h *harness) exists(key model.Key) bool {
	_, ok, err := h.store.Get(context.Background(), key)
	require.NoError(h.t, err)
	return ok
}

// warned reports whether a warning with msg was logged since the last call.
func (h *harness) warned(msg string) bool {
	found := false
	for _, entry := range h.logs.TakeAll() {
		if entry.Message == msg {
			found = true
		}
	}
	return found
}

func (h *harness) createPool(poolID, creator string, maxPlayers int) {
	h.apply(model.EventPoolCreated, map[string]string{
		"poolId": poolID, "creator": creator, "entryFee": oneEth, "maxPlayers": fmt.Sprint(maxPlayers),
	})
}

func (h *harness) join(poolID, player string, current int) aggregate.Delta {
	return h.apply(model.EventPlayerJoined, map[string]string{
		"poolId": poolID, "player": player, "currentPlayers": fmt.Sprint(current), "maxPlayers": "10",
	})
}

func TestPoolCreated(t *testing.T) {
	h := newHarness(t)
	delta := h.apply(model.EventPoolCreated, map[string]string{
		"poolId": "1", "creator": "0xA", "entryFee": oneEth, "maxPlayers": "10",
	})
	require.Equal(t, int64(1), delta.PoolsCreated)

	var pool model.Pool
	h.load(model.PoolKey(chainID, "1"), &pool)
	require.Equal(t, model.PoolStatusOpened, pool.Status)
	require.Equal(t, uint64(0), pool.CurrentPlayers)
	require.True(t, pool.PrizePool.IsZero())
	require.Equal(t, oneEth, pool.EntryFee.String())
	require.Equal(t, "0xa", pool.Creator)

	var creator model.Creator
	h.load(model.CreatorKey(chainID, "0xA"), &creator)
	require.Equal(t, uint64(1), creator.TotalPoolsCreated)

	again := h.apply(model.EventPoolCreated, map[string]string{
		"poolId": "1", "creator": "0xA", "entryFee": oneEth, "maxPlayers": "10",
	})
	require.True(t, again.Empty())
	h.load(model.CreatorKey(chainID, "0xA"), &creator)
	require.Equal(t, uint64(1), creator.TotalPoolsCreated)
}

func TestPlayerJoined(t *testing.T) {
	h := newHarness(t)
	h.createPool("1", "0xA", 10)
	h.createPool("2", "0xA", 10)

	delta := h.join("1", "0xB", 1)
	require.Equal(t, int64(1), delta.Players)
	require.Equal(t, int64(1), delta.PlayerJoins)

	var pool model.Pool
	h.load(model.PoolKey(chainID, "1"), &pool)
	require.Equal(t, uint64(1), pool.CurrentPlayers)
	require.Equal(t, oneEth, pool.PrizePool.String())

	// payload-authoritative count, even when it skips ahead
	h.join("1", "0xC", 3)
	h.load(model.PoolKey(chainID, "1"), &pool)
	require.Equal(t, uint64(3), pool.CurrentPlayers)
	require.Equal(t, "3000000000000000000", pool.PrizePool.String())

	second := h.join("2", "0xB", 1)
	require.Equal(t, int64(0), second.Players)
	require.Equal(t, int64(1), second.PlayerJoins)

	var player model.Player
	h.load(model.PlayerKey(chainID, "0xB"), &player)
	require.Equal(t, uint64(2), player.TotalPoolsJoined)
	require.Equal(t, "2000000000000000000", player.TotalSpent.String())

	var entry model.PlayerPool
	h.load(model.PlayerPoolKey(chainID, "0xB", "1"), &entry)
	require.Equal(t, oneEth, entry.EntryFeePaid.String())

	dup := h.join("1", "0xB", 3)
	require.Equal(t, int64(0), dup.PlayerJoins)
	h.load(model.PlayerKey(chainID, "0xB"), &player)
	require.Equal(t, uint64(2), player.TotalPoolsJoined)
}

func TestPlayerJoinedUnknownPoolStillCreditsPlayer(t *testing.T) {
	h := newHarness(t)
	delta := h.join("404", "0xB", 1)
	require.Equal(t, int64(1), delta.Players)
	require.False(t, h.exists(model.PoolKey(chainID, "404")))

	var player model.Player
	h.load(model.PlayerKey(chainID, "0xB"), &player)
	require.Equal(t, uint64(1), player.TotalPoolsJoined)
	require.True(t, player.TotalSpent.IsZero())
}

func TestPlayerJoinedOverCapacityIsFlagged(t *testing.T) {
	h := newHarness(t)
	h.createPool("1", "0xA", 2)

	h.apply(model.EventPlayerJoined, map[string]string{"poolId": "1", "player": "0xB", "currentPlayers": "2", "maxPlayers": "2"})
	require.False(t, h.warned("inconsistency: pool over capacity"))

	h.apply(model.EventPlayerJoined, map[string]string{"poolId": "1", "player": "0xC", "currentPlayers": "3", "maxPlayers": "4"})
	require.True(t, h.warned("inconsistency: pool over capacity"))

	h.apply(model.EventPlayerJoined, map[string]string{"poolId": "404", "player": "0xD", "currentPlayers": "5", "maxPlayers": "4"})
	require.True(t, h.warned("inconsistency: pool over capacity in payload"))

	// still recorded, the payload count wins
	var pool model.Pool
	h.load(model.PoolKey(chainID, "1"), &pool)
	require.Equal(t, uint64(3), pool.CurrentPlayers)
}

func TestPoolActivated(t *testing.T) {
	h := newHarness(t)
	h.createPool("1", "0xA", 10)

	delta := h.apply(model.EventPoolActivated, map[string]string{"poolId": "1", "totalPlayers": "5", "prizePool": "5000000000000000000"})
	require.Equal(t, int64(1), delta.PoolsActive)
	require.Equal(t, "5000000000000000000", delta.VolumeProcessed.String())

	var pool model.Pool
	h.load(model.PoolKey(chainID, "1"), &pool)
	require.Equal(t, model.PoolStatusActive, pool.Status)
	require.Equal(t, uint64(1), pool.CurrentRound)
	require.Equal(t, uint64(5), pool.CurrentPlayers)
	require.Equal(t, "5000000000000000000", pool.PrizePool.String())

	missing := h.apply(model.EventPoolActivated, map[string]string{"poolId": "2", "totalPlayers": "5", "prizePool": "1"})
	require.True(t, missing.Empty())
}

func TestChoicesAndRoundResolution(t *testing.T) {
	h := newHarness(t)
	h.createPool("1", "0xA", 3)
	for i, p := range []string{"0xB", "0xC", "0xD"} {
		h.join("1", p, i+1)
	}
	h.apply(model.EventPoolActivated, map[string]string{"poolId": "1", "totalPlayers": "3", "prizePool": "3000000000000000000"})

	h.apply(model.EventPlayerMadeChoice, map[string]string{"poolId": "1", "player": "0xB", "choice": "HEADS", "round": "1"})
	h.apply(model.EventPlayerMadeChoice, map[string]string{"poolId": "1", "player": "0xC", "choice": "TAILS", "round": "1"})
	h.apply(model.EventPlayerMadeChoice, map[string]string{"poolId": "1", "player": "0xD", "choice": "1", "round": "1"})
	// second pick for the same triple is ignored
	h.apply(model.EventPlayerMadeChoice, map[string]string{"poolId": "1", "player": "0xB", "choice": "TAILS", "round": "1"})

	var round model.GameRound
	h.load(model.GameRoundKey(chainID, "1", 1), &round)
	require.Equal(t, uint64(1), round.HeadsCount)
	require.Equal(t, uint64(2), round.TailsCount)

	var first model.PlayerChoice
	h.load(model.PlayerChoiceKey(chainID, "0xB", "1", 1), &first)
	require.Equal(t, model.ChoiceHeads, first.Choice)

	h.apply(model.EventRoundResolved, map[string]string{
		"poolId": "1", "round": "1", "winningChoice": "HEADS", "eliminatedCount": "2", "remainingCount": "1",
	})

	h.load(model.GameRoundKey(chainID, "1", 1), &round)
	require.True(t, round.Resolved)
	require.NotNil(t, round.WinningChoice)
	require.Equal(t, model.ChoiceHeads, *round.WinningChoice)
	require.NotZero(t, round.ResolvedAt)
	require.Equal(t, uint64(2), round.EliminatedCount)

	h.load(model.PlayerChoiceKey(chainID, "0xB", "1", 1), &first)
	require.True(t, first.WasWinningChoice)
	var loser model.PlayerChoice
	h.load(model.PlayerChoiceKey(chainID, "0xC", "1", 1), &loser)
	require.False(t, loser.WasWinningChoice)

	var entry model.PlayerPool
	h.load(model.PlayerPoolKey(chainID, "0xC", "1"), &entry)
	require.True(t, entry.IsEliminated)
	require.Equal(t, uint64(1), entry.EliminatedRound)
	h.load(model.PlayerPoolKey(chainID, "0xB", "1"), &entry)
	require.False(t, entry.IsEliminated)

	var player model.Player
	h.load(model.PlayerKey(chainID, "0xD"), &player)
	require.Equal(t, uint64(1), player.TotalPoolsEliminated)

	var pool model.Pool
	h.load(model.PoolKey(chainID, "1"), &pool)
	require.Equal(t, uint64(2), pool.CurrentRound)
}

func TestChoiceAfterResolutionIsScored(t *testing.T) {
	h := newHarness(t)
	h.apply(model.EventRoundResolved, map[string]string{
		"poolId": "1", "round": "1", "winningChoice": "TAILS", "eliminatedCount": "0", "remainingCount": "0",
	})
	h.apply(model.EventPlayerMadeChoice, map[string]string{"poolId": "1", "player": "0xB", "choice": "TAILS", "round": "1"})
	h.apply(model.EventPlayerMadeChoice, map[string]string{"poolId": "1", "player": "0xC", "choice": "HEADS", "round": "1"})
	require.True(t, h.warned("inconsistency: choice after round resolution"))

	var pick model.PlayerChoice
	h.load(model.PlayerChoiceKey(chainID, "0xB", "1", 1), &pick)
	require.True(t, pick.WasWinningChoice)
	h.load(model.PlayerChoiceKey(chainID, "0xC", "1", 1), &pick)
	require.False(t, pick.WasWinningChoice)
}

func TestRoundResolvedWithoutChoices(t *testing.T) {
	h := newHarness(t)
	h.apply(model.EventRoundResolved, map[string]string{
		"poolId": "9", "round": "2", "winningChoice": "TAILS", "eliminatedCount": "0", "remainingCount": "0",
	})
	var round model.GameRound
	h.load(model.GameRoundKey(chainID, "9", 2), &round)
	require.True(t, round.Resolved)
}

func TestGameCompleted(t *testing.T) {
	h := newHarness(t)
	h.createPool("1", "0xA", 2)
	h.join("1", "0xB", 1)
	h.apply(model.EventPoolActivated, map[string]string{"poolId": "1", "totalPlayers": "2", "prizePool": "2000000000000000000"})

	prize := "4750000000000000000"
	delta := h.apply(model.EventGameCompleted, map[string]string{"poolId": "1", "winner": "0xB", "prizeAmount": prize})
	require.Equal(t, int64(-1), delta.PoolsActive)
	require.Equal(t, int64(1), delta.PoolsCompleted)
	require.Equal(t, prize, delta.PrizesAwarded.String())

	var pool model.Pool
	h.load(model.PoolKey(chainID, "1"), &pool)
	require.Equal(t, model.PoolStatusCompleted, pool.Status)
	require.NotNil(t, pool.Winner)
	require.Equal(t, "0xb", *pool.Winner)

	var player model.Player
	h.load(model.PlayerKey(chainID, "0xB"), &player)
	require.Equal(t, uint64(1), player.TotalPoolsWon)
	require.Equal(t, prize, player.TotalEarnings.String())

	var entry model.PlayerPool
	h.load(model.PlayerPoolKey(chainID, "0xB", "1"), &entry)
	require.True(t, entry.HasWon)
	require.True(t, entry.PrizeClaimed)

	var creator model.Creator
	h.load(model.CreatorKey(chainID, "0xA"), &creator)
	require.Equal(t, uint64(1), creator.CompletedPools)

	again := h.apply(model.EventGameCompleted, map[string]string{"poolId": "1", "winner": "0xB", "prizeAmount": prize})
	require.True(t, again.Empty())
	h.load(model.PlayerKey(chainID, "0xB"), &player)
	require.Equal(t, uint64(1), player.TotalPoolsWon)
}

func TestPoolAbandoned(t *testing.T) {
	h := newHarness(t)
	h.createPool("1", "0xA", 4)
	h.join("1", "0xB", 1)
	h.join("1", "0xC", 2)

	delta := h.apply(model.EventPoolAbandoned, map[string]string{"poolId": "1", "creator": "0xA", "refundedPlayers": "2"})
	require.Equal(t, int64(1), delta.PoolsAbandoned)
	require.Equal(t, int64(0), delta.PoolsActive)

	var pool model.Pool
	h.load(model.PoolKey(chainID, "1"), &pool)
	require.Equal(t, model.PoolStatusAbandoned, pool.Status)

	for _, p := range []string{"0xB", "0xC"} {
		var entry model.PlayerPool
		h.load(model.PlayerPoolKey(chainID, p, "1"), &entry)
		require.True(t, entry.Refunded, p)
	}

	var creator model.Creator
	h.load(model.CreatorKey(chainID, "0xA"), &creator)
	require.Equal(t, uint64(1), creator.AbandonedPools)

	// abandoning an active pool leaves the active counter
	h.createPool("2", "0xA", 4)
	h.apply(model.EventPoolActivated, map[string]string{"poolId": "2", "totalPlayers": "4", "prizePool": "4"})
	delta = h.apply(model.EventPoolAbandoned, map[string]string{"poolId": "2", "creator": "0xA", "refundedPlayers": "0"})
	require.Equal(t, int64(-1), delta.PoolsActive)
	require.Equal(t, int64(1), delta.PoolsAbandoned)
}

func TestStakeLedger(t *testing.T) {
	h := newHarness(t)
	delta := h.apply(model.EventStakeDeposited, map[string]string{"creator": "0xA", "amount": "30", "poolsEligible": "3"})
	require.Equal(t, "30", delta.Staked.String())

	var creator model.Creator
	h.load(model.CreatorKey(chainID, "0xA"), &creator)
	require.Equal(t, "30", creator.TotalStaked.String())
	require.Equal(t, uint64(3), creator.TotalPoolsEligible)

	delta = h.apply(model.EventStakeWithdrawn, map[string]string{"creator": "0xA", "amount": "50", "penalty": "5"})
	require.Equal(t, "-30", delta.Staked.String())

	h.load(model.CreatorKey(chainID, "0xA"), &creator)
	require.True(t, creator.TotalStaked.IsZero())
	require.Equal(t, uint64(0), creator.TotalPoolsEligible)

	chain := uint64(chainID)
	rows, err := h.store.List(context.Background(), storage.Query{Kind: model.KindStakeEvent, ChainID: &chain, Match: map[string]string{"type": "Withdraw"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	var ledger model.StakeEvent
	require.NoError(t, rows[0].Decode(&ledger))
	require.Equal(t, "50", ledger.Amount.String())
	require.NotNil(t, ledger.Penalty)
	require.Equal(t, "5", ledger.Penalty.String())
}

func TestStakeWithdrawnUnknownCreatorWritesLedgerOnly(t *testing.T) {
	h := newHarness(t)
	delta := h.apply(model.EventStakeWithdrawn, map[string]string{"creator": "0xF", "amount": "10", "penalty": "0"})
	require.True(t, delta.Empty())
	require.False(t, h.exists(model.CreatorKey(chainID, "0xF")))
	require.Equal(t, 1, h.store.Len())
}

func TestCreatorEvents(t *testing.T) {
	h := newHarness(t)

	// paid on chain, so counted even before the creator is indexed
	delta := h.apply(model.EventCreatorRewardClaimed, map[string]string{"creator": "0xA", "amount": "7"})
	require.Equal(t, "7", delta.CreatorRewards.String())
	require.Equal(t, 0, h.store.Len())
	require.True(t, h.warned("missing referenced entity, skipping mutation"))

	h.createPool("1", "0xA", 2)
	delta = h.apply(model.EventCreatorRewardClaimed, map[string]string{"creator": "0xA", "amount": "7"})
	require.Equal(t, "7", delta.CreatorRewards.String())
	h.apply(model.EventCreatorVerified, map[string]string{"creator": "0xA", "attestationId": "99"})
	h.apply(model.EventVerificationBonusApplied, map[string]string{"creator": "0xA", "bonusPools": "4"})
	h.apply(model.EventVerificationBonusApplied, map[string]string{"creator": "0xA", "bonusPools": "2"})

	var creator model.Creator
	h.load(model.CreatorKey(chainID, "0xA"), &creator)
	require.Equal(t, "7", creator.TotalEarned.String())
	require.True(t, creator.IsVerified)
	require.Equal(t, "99", creator.AttestationID)
	require.Equal(t, uint64(2), creator.VerificationBonusPools)
	require.Equal(t, "true", creator.StoreIndexes()["verified"])
}

func TestAdminEvents(t *testing.T) {
	h := newHarness(t)
	delta := h.apply(model.EventProjectPoolUpdated, map[string]string{"totalProjectPool": "123"})
	require.NotNil(t, delta.ProjectPool)
	require.Equal(t, "123", delta.ProjectPool.String())

	delta = h.apply(model.EventScopeUpdated, map[string]string{"scope": "1"})
	require.True(t, delta.Empty())
	delta = h.apply(model.EventOwnershipTransferred, map[string]string{"previousOwner": "0x1", "newOwner": "0x2"})
	require.True(t, delta.Empty())
	require.Equal(t, 0, h.store.Len())
}

func TestInvalidPayload(t *testing.T) {
	h := newHarness(t)
	cases := map[string]map[string]string{
		model.EventPoolCreated:      {"poolId": "1", "creator": "0xA", "entryFee": "lots", "maxPlayers": "2"},
		model.EventPlayerJoined:     {"poolId": "1", "player": "0xB"},
		model.EventPlayerMadeChoice: {"poolId": "1", "player": "0xB", "choice": "EDGE", "round": "1"},
		model.EventStakeDeposited:   {"creator": "0xA", "amount": "-5", "poolsEligible": "1"},
	}
	for name, fields := range cases {
		_, err := h.try(name, fields)
		require.ErrorIs(t, err, ErrInvalidPayload, name)
	}
	require.Equal(t, 0, h.store.Len())
}

func TestRegistryCoversContractEvents(t *testing.T) {
	names := Default().Names()
	require.Len(t, names, 15)
	_, ok := Default().Lookup("Mystery")
	require.False(t, ok)
}

func TestFieldPoliciesNameRealFields(t *testing.T) {
	types := map[model.Kind]reflect.Type{
		model.KindPool:         reflect.TypeOf(model.Pool{}),
		model.KindCreator:      reflect.TypeOf(model.Creator{}),
		model.KindPlayer:       reflect.TypeOf(model.Player{}),
		model.KindPlayerPool:   reflect.TypeOf(model.PlayerPool{}),
		model.KindGameRound:    reflect.TypeOf(model.GameRound{}),
		model.KindPlayerChoice: reflect.TypeOf(model.PlayerChoice{}),
		model.KindNetworkStats: reflect.TypeOf(model.NetworkStats{}),
		model.KindSystemStats:  reflect.TypeOf(model.SystemStats{}),
	}
	for kind, fields := range FieldPolicies {
		typ, ok := types[kind]
		require.True(t, ok, kind)
		tags := jsonNames(typ)
		for field := range fields {
			_, ok := tags[field]
			require.True(t, ok, "%s.%s", kind, field)
		}
	}
	p, ok := PolicyFor(model.KindPool, "current_players")
	require.True(t, ok)
	require.Equal(t, Replace, p)
}

func jsonNames(typ reflect.Type) map[string]struct{} {
	out := make(map[string]struct{})
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if f.Anonymous {
			for name := range jsonNames(f.Type) {
				out[name] = struct{}{}
			}
			continue
		}
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		out[name] = struct{}{}
	}
	return out
}
