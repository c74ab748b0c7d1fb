package handler

import (
	"sort"

	"minorityScope/internal/model"
)

// Registry maps contract event names to handlers.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Default returns a registry with a handler for every game contract event.
func Default() *Registry {
	r := NewRegistry()
	r.Register(model.EventPoolCreated, PoolCreated)
	r.Register(model.EventPlayerJoined, PlayerJoined)
	r.Register(model.EventPoolActivated, PoolActivated)
	r.Register(model.EventPlayerMadeChoice, PlayerMadeChoice)
	r.Register(model.EventRoundResolved, RoundResolved)
	r.Register(model.EventGameCompleted, GameCompleted)
	r.Register(model.EventPoolAbandoned, PoolAbandoned)
	r.Register(model.EventStakeDeposited, StakeDeposited)
	r.Register(model.EventStakeWithdrawn, StakeWithdrawn)
	r.Register(model.EventCreatorRewardClaimed, CreatorRewardClaimed)
	r.Register(model.EventCreatorVerified, CreatorVerified)
	r.Register(model.EventVerificationBonusApplied, VerificationBonusApplied)
	r.Register(model.EventProjectPoolUpdated, ProjectPoolUpdated)
	r.Register(model.EventScopeUpdated, AuditOnly)
	r.Register(model.EventOwnershipTransferred, AuditOnly)
	return r
}

// Register installs h for name, replacing any earlier handler.
func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
}

func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered event names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
