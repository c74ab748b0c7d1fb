package aggregate

import "minorityScope/internal/model"

// Delta is the change one event makes to the rolling stats.
// Counts are signed so transitions can move a pool between status counters.
type Delta struct {
	PoolsCreated   int64
	PoolsActive    int64
	PoolsCompleted int64
	PoolsAbandoned int64
	Players        int64
	PlayerJoins    int64

	VolumeProcessed model.Amount
	PrizesAwarded   model.Amount
	CreatorRewards  model.Amount
	Staked          model.Amount

	// ProjectPool is the chain's absolute project pool value when the event carried one.
	ProjectPool *model.Amount
}

// Transition moves one pool from the counter of status from to the counter of status to.
// Opened pools are not counted.
func (d *Delta) Transition(from, to model.PoolStatus) {
	if from == to {
		return
	}
	if counter := d.statusCounter(from); counter != nil {
		*counter--
	}
	if counter := d.statusCounter(to); counter != nil {
		*counter++
	}
}

func (d *Delta) statusCounter(status model.PoolStatus) *int64 {
	switch status {
	case model.PoolStatusActive:
		return &d.PoolsActive
	case model.PoolStatusCompleted:
		return &d.PoolsCompleted
	case model.PoolStatusAbandoned:
		return &d.PoolsAbandoned
	default:
		return nil
	}
}

func (d *Delta) AddVolume(v model.Amount)        { d.VolumeProcessed = d.VolumeProcessed.Add(v) }
func (d *Delta) AddPrize(v model.Amount)         { d.PrizesAwarded = d.PrizesAwarded.Add(v) }
func (d *Delta) AddCreatorReward(v model.Amount) { d.CreatorRewards = d.CreatorRewards.Add(v) }
func (d *Delta) AddStaked(v model.Amount)        { d.Staked = d.Staked.Add(v) }

// SetProjectPool records the chain's authoritative project pool total.
func (d *Delta) SetProjectPool(v model.Amount) {
	d.ProjectPool = &v
}

// Empty reports whether applying d would change nothing.
func (d *Delta) Empty() bool {
	return d.PoolsCreated == 0 && d.PoolsActive == 0 && d.PoolsCompleted == 0 && d.PoolsAbandoned == 0 &&
		d.Players == 0 && d.PlayerJoins == 0 &&
		d.VolumeProcessed.IsZero() && d.PrizesAwarded.IsZero() && d.CreatorRewards.IsZero() && d.Staked.IsZero() &&
		d.ProjectPool == nil
}

// Apply adds d to c, clamping every counter at zero. It returns the names of clamped counters.
// The project pool is not touched; callers apply it per scope.
func Apply(c *model.Counters, d Delta) []string {
	var clamped []string
	count := func(name string, dst *uint64, delta int64) {
		if delta >= 0 {
			*dst += uint64(delta)
			return
		}
		dec := uint64(-delta)
		if dec > *dst {
			clamped = append(clamped, name)
			*dst = 0
			return
		}
		*dst -= dec
	}
	amount := func(name string, dst *model.Amount, delta model.Amount) {
		next := dst.Add(delta)
		if next.Sign() < 0 {
			clamped = append(clamped, name)
			next = model.Amount{}
		}
		*dst = next
	}

	count("total_pools_created", &c.TotalPoolsCreated, d.PoolsCreated)
	count("total_pools_active", &c.TotalPoolsActive, d.PoolsActive)
	count("total_pools_completed", &c.TotalPoolsCompleted, d.PoolsCompleted)
	count("total_pools_abandoned", &c.TotalPoolsAbandoned, d.PoolsAbandoned)
	count("total_players", &c.TotalPlayers, d.Players)
	count("total_player_joins", &c.TotalPlayerJoins, d.PlayerJoins)
	amount("total_volume_processed", &c.TotalVolumeProcessed, d.VolumeProcessed)
	amount("total_prizes_awarded", &c.TotalPrizesAwarded, d.PrizesAwarded)
	amount("total_creator_rewards", &c.TotalCreatorRewards, d.CreatorRewards)
	amount("total_staked", &c.TotalStaked, d.Staked)
	return clamped
}
