package handler

import "minorityScope/internal/model"

// Policy says how a handler writes a field.
type Policy string

const (
	// Replace overwrites the field with a value carried by the payload or the event position.
	// Reapplying the event leaves it unchanged.
	Replace Policy = "replace"
	// Accumulate adds to the field. It is only safe behind the replay check.
	Accumulate Policy = "accumulate"
)

// FieldPolicies lists every field the handlers write, keyed by entity kind and JSON name.
var FieldPolicies = map[model.Kind]map[string]Policy{
	model.KindPool: {
		"status":          Replace,
		"current_players": Replace,
		"prize_pool":      Replace,
		"current_round":   Replace,
		"winner":          Replace,
		"prize_amount":    Replace,
		"activated_at":    Replace,
		"activated_block": Replace,
		"completed_at":    Replace,
		"completed_block": Replace,
		"abandoned_at":    Replace,
		"abandoned_block": Replace,
		"updated_at":      Replace,
	},
	model.KindCreator: {
		"total_staked":             Accumulate,
		"total_earned":             Accumulate,
		"total_pools_eligible":     Replace,
		"total_pools_created":      Accumulate,
		"is_verified":              Replace,
		"verified_at":              Replace,
		"verified_block":           Replace,
		"attestation_id":           Replace,
		"verification_bonus_pools": Replace,
		"completed_pools":          Accumulate,
		"abandoned_pools":          Accumulate,
		"last_active_at":           Replace,
	},
	model.KindPlayer: {
		"total_pools_joined":     Accumulate,
		"total_pools_won":        Accumulate,
		"total_pools_eliminated": Accumulate,
		"total_earnings":         Accumulate,
		"total_spent":            Accumulate,
		"last_active_at":         Replace,
	},
	model.KindPlayerPool: {
		"is_eliminated":    Replace,
		"eliminated_round": Replace,
		"has_won":          Replace,
		"prize_claimed":    Replace,
		"prize_amount":     Replace,
		"refunded":         Replace,
	},
	model.KindGameRound: {
		"resolved":         Replace,
		"winning_choice":   Replace,
		"eliminated_count": Replace,
		"remaining_count":  Replace,
		"resolved_at":      Replace,
		"resolved_block":   Replace,
		"heads_count":      Accumulate,
		"tails_count":      Accumulate,
	},
	model.KindPlayerChoice: {
		"was_winning_choice": Replace,
	},
	model.KindNetworkStats: {
		"total_pools_created":    Accumulate,
		"total_pools_active":     Accumulate,
		"total_pools_completed":  Accumulate,
		"total_pools_abandoned":  Accumulate,
		"total_players":          Accumulate,
		"total_player_joins":     Accumulate,
		"total_volume_processed": Accumulate,
		"total_prizes_awarded":   Accumulate,
		"total_creator_rewards":  Accumulate,
		"total_staked":           Accumulate,
		"total_project_pool":     Replace,
		"last_updated_at":        Replace,
	},
	model.KindSystemStats: {
		"total_pools_created":    Accumulate,
		"total_pools_active":     Accumulate,
		"total_pools_completed":  Accumulate,
		"total_pools_abandoned":  Accumulate,
		"total_players":          Accumulate,
		"total_player_joins":     Accumulate,
		"total_volume_processed": Accumulate,
		"total_prizes_awarded":   Accumulate,
		"total_creator_rewards":  Accumulate,
		"total_staked":           Accumulate,
		"total_project_pool":     Accumulate,
		"last_updated_at":        Replace,
	},
}

// PolicyFor returns the write policy of a field.
func PolicyFor(kind model.Kind, field string) (Policy, bool) {
	p, ok := FieldPolicies[kind][field]
	return p, ok
}
