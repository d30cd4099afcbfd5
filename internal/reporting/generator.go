package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"collection-governance/internal/domain"
	"collection-governance/internal/governance"
	"collection-governance/internal/replay"
	"collection-governance/internal/storage"
)

// Generator produces reports from the event log.
type Generator struct {
	eventStore    storage.EventStore
	activityStore storage.ActivityStore // optional
	stateOpts     replay.StateOptions
	now           func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. activityStore may be nil.
func NewGenerator(
	eventStore storage.EventStore,
	activityStore storage.ActivityStore,
	stateOpts replay.StateOptions,
) *Generator {
	return &Generator{
		eventStore:    eventStore,
		activityStore: activityStore,
		stateOpts:     stateOpts,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate rebuilds state from the event log and produces a complete report.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	state, err := replay.NewState(g.stateOpts)
	if err != nil {
		return nil, fmt.Errorf("init state: %w", err)
	}

	events, err := g.eventStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	if err := replay.CheckOrdering(events, 0); err != nil {
		return nil, err
	}
	for _, ev := range events {
		if err := state.OnEvent(ctx, ev); err != nil {
			return nil, err
		}
	}

	r := Build(state, events, g.now())

	if g.activityStore != nil {
		summary, err := g.activityStore.Summarize(ctx)
		if err != nil {
			return nil, fmt.Errorf("summarize activity: %w", err)
		}
		for _, s := range summary {
			r.Activity = append(r.Activity, ActivityRow{
				Kind:    s.Kind,
				Count:   s.Count,
				Amount:  s.Amount,
				Holders: s.Holders,
			})
		}
	}

	return r, nil
}

// Build produces a report from rebuilt state and the events it was built
// from. Proposal statuses are evaluated at now.
func Build(state *replay.State, events []*domain.Event, now time.Time) *Report {
	l, gov := state.Ledger, state.Governance

	proposalsBy := make(map[domain.Holder]int)
	votesBy := make(map[domain.Holder]int)
	var withdrawn uint64
	for _, ev := range events {
		switch p := ev.Payload.(type) {
		case domain.ProposalCreated:
			proposalsBy[p.Proposer]++
		case domain.VoteCast:
			votesBy[p.Voter]++
		case domain.PaymentWithdrawn:
			withdrawn += p.Amount
		}
	}

	holders := l.Holders()
	cfg := l.Config()
	r := &Report{
		GeneratedAt:  now,
		LastSequence: state.LastSequence,
		EventCount:   len(events),
		Collection: CollectionSummary{
			Name:         cfg.Name,
			Symbol:       cfg.Symbol,
			TotalSupply:  cfg.TotalSupply,
			Sold:         l.SoldCount(),
			Available:    l.AvailableCount(),
			PricePerItem: cfg.PricePerItem,
			MaxPerHolder: cfg.MaxPerHolder,
			BaseURI:      cfg.BaseURI,
			Revenue:      l.SoldCount() * cfg.PricePerItem,
			HolderCount:  len(holders),
			Withdrawn:    withdrawn,
		},
	}

	gc := gov.Config()
	r.Governance = GovernanceSummary{
		MinProposalVotes:   gc.MinProposalVotes,
		MinVotesToApprove:  gc.MinVotesToApprove,
		MinTokensToApprove: gc.MinTokensToApprove,
		LedgerReference:    gov.LedgerReference(),
		TotalProposals:     gov.TotalProposals(),
		ByStatus:           make(map[domain.ProposalStatus]int),
	}

	for _, h := range holders {
		r.Holders = append(r.Holders, HolderRow{
			Holder:         h.Holder,
			Purchased:      h.Purchased,
			VotingPower:    gov.VotingPower(h.Holder),
			RemainingQuota: l.RemainingQuota(h.Holder),
			Proposals:      proposalsBy[h.Holder],
			Votes:          votesBy[h.Holder],
		})
	}

	th := gov.Thresholds()
	for _, p := range gov.Proposals() {
		status := governance.Evaluate(p, th, now)
		r.Governance.ByStatus[status]++
		r.Proposals = append(r.Proposals, ProposalRow{
			ID:           p.ID,
			Proposer:     p.Proposer,
			Username:     p.Metadata.Username,
			Description:  p.Metadata.Description,
			StartTime:    p.StartTime,
			EndTime:      p.EndTime,
			Status:       status,
			VotesFor:     p.VotesFor,
			VotesAgainst: p.VotesAgainst,
			UniqueVoters: p.UniqueVoters,
		})
	}
	sort.Slice(r.Proposals, func(i, j int) bool { return r.Proposals[i].ID < r.Proposals[j].ID })

	return r
}
