package replay

import (
	"context"
	"fmt"

	"collection-governance/internal/domain"
	"collection-governance/internal/governance"
	"collection-governance/internal/ledger"
	"collection-governance/internal/token"
)

// StateOptions configures a fresh State.
type StateOptions struct {
	Ledger        domain.LedgerConfig
	Governance    domain.GovernanceConfig
	LedgerAddress domain.Holder
	Payment       token.Port
	// Sources resolves voting power sources other than the ledger named by
	// LedgerReferenceUpdated events.
	Sources map[domain.Holder]governance.VotingPowerSource
}

// State is a ledger and a governance engine rebuilt from events.
// Payments are never charged while applying events.
type State struct {
	Ledger       *ledger.Ledger
	Governance   *governance.Engine
	LastSequence uint64
	sources      map[domain.Holder]governance.VotingPowerSource
}

// NewState creates the initial state: every item available, no proposals.
func NewState(opts StateOptions) (*State, error) {
	l, err := ledger.New(ledger.Options{
		Config:  opts.Ledger,
		Address: opts.LedgerAddress,
		Payment: opts.Payment,
	})
	if err != nil {
		return nil, err
	}
	g, err := governance.New(governance.Options{
		Config: opts.Governance,
		Power:  l,
	})
	if err != nil {
		return nil, err
	}

	sources := make(map[domain.Holder]governance.VotingPowerSource, len(opts.Sources)+1)
	for addr, src := range opts.Sources {
		sources[addr] = src
	}
	sources[l.Address()] = l

	return &State{Ledger: l, Governance: g, sources: sources}, nil
}

// Compile-time interface check.
var _ ReplayEngine = (*State)(nil)

// OnEvent applies one committed event.
func (s *State) OnEvent(_ context.Context, ev *domain.Event) error {
	if err := s.apply(ev); err != nil {
		return fmt.Errorf("apply event %d (%s): %w", ev.Sequence, ev.Name, err)
	}
	s.LastSequence = ev.Sequence
	return nil
}

func (s *State) apply(ev *domain.Event) error {
	if ev.Payload == nil || ev.Payload.EventName() != ev.Name {
		return fmt.Errorf("payload does not match event name: %w", ErrInvalidEvent)
	}

	switch p := ev.Payload.(type) {
	case domain.ItemAllocated:
		return s.Ledger.ApplyAllocation(p)
	case domain.BaseURIUpdated:
		s.Ledger.ApplyBaseURI(p)
		return nil
	case domain.ItemURIUpdated:
		return s.Ledger.ApplyItemURI(p)
	case domain.PaymentWithdrawn:
		// Token balances live outside the ledger.
		return nil
	case domain.ProposalCreated:
		return s.Governance.ApplyCreated(p, ev.OccurredAt)
	case domain.VoteCast:
		return s.Governance.ApplyVote(p, ev.OccurredAt)
	case domain.ProposalCancelled:
		return s.Governance.ApplyCancelled(p)
	case domain.ThresholdUpdated:
		return s.Governance.ApplyThreshold(p)
	case domain.LedgerReferenceUpdated:
		return s.Governance.ApplyLedgerReference(p, s.sources[p.New])
	default:
		return fmt.Errorf("%T: %w", ev.Payload, ErrInvalidEvent)
	}
}
