// Package source delivers decoded game events to the indexing engine.
package source

import (
	"context"

	"minorityScope/internal/model"
)

// Delivery is one event plus the callbacks that settle it with its origin.
type Delivery struct {
	Event model.GameEvent
	Ack   func() error
	Nak   func() error
}

// Source streams deliveries into out until it is exhausted or ctx is done.
// Implementations never close out.
type Source interface {
	Stream(ctx context.Context, out chan<- Delivery) error
}

func noop() error { return nil }
