package replay

import (
	"context"

	"collection-governance/internal/domain"
)

// ReplayEngine processes events in sequence order.
type ReplayEngine interface {
	// OnEvent is called for each event in order.
	// Events are guaranteed to carry contiguous sequence numbers.
	OnEvent(ctx context.Context, event *domain.Event) error
}

// EngineFunc adapts a function to ReplayEngine.
type EngineFunc func(ctx context.Context, event *domain.Event) error

// OnEvent calls f(ctx, event).
func (f EngineFunc) OnEvent(ctx context.Context, event *domain.Event) error {
	return f(ctx, event)
}
