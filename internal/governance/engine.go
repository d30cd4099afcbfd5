// Package governance implements holder-weighted proposals with fixed voting
// windows, a per-proposer cooldown and threshold-based approval.
//
// Voting power is read live from a VotingPowerSource (the allocation ledger)
// at the moment a vote is cast; the weight recorded with the vote never
// changes afterwards.
//
// An Engine is not safe for concurrent use; callers serialize access.
package governance

import (
	"fmt"
	"time"

	"collection-governance/internal/domain"
)

// VotingPowerSource supplies live voting power.
type VotingPowerSource interface {
	// Address identifies the source, used for reference updates.
	Address() domain.Holder
	VotingPower(holder domain.Holder) uint64
}

// Options configures a new Engine.
type Options struct {
	Config  domain.GovernanceConfig
	Power   VotingPowerSource
	Emitter domain.Emitter // nil discards events
}

type proposalState struct {
	domain.Proposal
	ballots map[domain.Holder]domain.Ballot
	voters  []domain.Holder // cast order
}

// Engine holds proposals, votes and thresholds.
type Engine struct {
	cfg          domain.GovernanceConfig
	power        VotingPowerSource
	emitter      domain.Emitter
	proposals    []*proposalState // index is the proposal id
	lastProposal map[domain.Holder]time.Time
}

// New creates an engine with no proposals.
func New(opts Options) (*Engine, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("governance config: %w", err)
	}
	if opts.Power == nil || opts.Power.Address().IsZero() {
		return nil, fmt.Errorf("voting power source: %w", domain.ErrInvalidReference)
	}

	emitter := opts.Emitter
	if emitter == nil {
		emitter = domain.DiscardEmitter
	}

	return &Engine{
		cfg:          opts.Config,
		power:        opts.Power,
		emitter:      emitter,
		lastProposal: make(map[domain.Holder]time.Time),
	}, nil
}

// SetEmitter replaces the event emitter.
func (e *Engine) SetEmitter(em domain.Emitter) {
	if em == nil {
		em = domain.DiscardEmitter
	}
	e.emitter = em
}

// CreateProposal registers a proposal whose voting window is [start, end].
//
// Checks run in order: proposer voting power, window, metadata, cooldown.
// The cooldown is skipped for a proposer's first proposal.
func (e *Engine) CreateProposal(proposer domain.Holder, meta domain.ProposalMetadata, start, end, now time.Time) (domain.ProposalID, error) {
	if power := e.power.VotingPower(proposer); power < e.cfg.MinProposalVotes {
		return 0, fmt.Errorf("power %d below %d: %w", power, e.cfg.MinProposalVotes, domain.ErrInsufficientStake)
	}
	if !start.After(now) {
		return 0, fmt.Errorf("start %s not after now: %w", start.Format(time.RFC3339), domain.ErrInvalidWindow)
	}
	if !end.After(start) {
		return 0, fmt.Errorf("end %s not after start: %w", end.Format(time.RFC3339), domain.ErrInvalidWindow)
	}
	if meta.Username == "" || meta.Description == "" {
		return 0, domain.ErrInvalidMetadata
	}
	if last, ok := e.lastProposal[proposer]; ok {
		if wait := e.cfg.ProposalCooldown - now.Sub(last); wait > 0 {
			return 0, fmt.Errorf("retry in %s: %w", wait.Round(time.Second), domain.ErrThrottleActive)
		}
	}

	id := domain.ProposalID(len(e.proposals))
	e.store(id, proposer, meta, start, end, now)

	e.emitter.Emit(domain.ProposalCreated{
		ProposalID:  id,
		Proposer:    proposer,
		Username:    meta.Username,
		Description: meta.Description,
		Link:        meta.Link,
		StartTime:   start,
		EndTime:     end,
	})
	return id, nil
}

func (e *Engine) store(id domain.ProposalID, proposer domain.Holder, meta domain.ProposalMetadata, start, end, now time.Time) {
	e.proposals = append(e.proposals, &proposalState{
		Proposal: domain.Proposal{
			ID:        id,
			Proposer:  proposer,
			Metadata:  meta,
			CreatedAt: now,
			StartTime: start,
			EndTime:   end,
		},
		ballots: make(map[domain.Holder]domain.Ballot),
	})
	e.lastProposal[proposer] = now
}

// Vote casts voter's live voting power for or against a proposal.
//
// Checks run in order: existence, cancellation, window start, window end,
// duplicate vote, zero power.
func (e *Engine) Vote(voter domain.Holder, id domain.ProposalID, support bool, now time.Time) (domain.Ballot, error) {
	p, err := e.get(id)
	if err != nil {
		return domain.Ballot{}, err
	}
	if p.Cancelled {
		return domain.Ballot{}, domain.ErrProposalCancelled
	}
	if now.Before(p.StartTime) {
		return domain.Ballot{}, domain.ErrVotingNotStarted
	}
	if now.After(p.EndTime) {
		return domain.Ballot{}, domain.ErrVotingEnded
	}
	if _, voted := p.ballots[voter]; voted {
		return domain.Ballot{}, domain.ErrAlreadyVoted
	}
	weight := e.power.VotingPower(voter)
	if weight == 0 {
		return domain.Ballot{}, domain.ErrNoStake
	}

	b := domain.Ballot{ProposalID: id, Voter: voter, Support: support, Weight: weight, CastAt: now}
	p.record(b)

	e.emitter.Emit(domain.VoteCast{ProposalID: id, Voter: voter, Support: support, Weight: weight})
	return b, nil
}

func (p *proposalState) record(b domain.Ballot) {
	if b.Support {
		p.VotesFor += b.Weight
	} else {
		p.VotesAgainst += b.Weight
	}
	p.ballots[b.Voter] = b
	p.voters = append(p.voters, b.Voter)
	p.UniqueVoters++
}

// CancelProposal marks a proposal cancelled. Only the proposer may cancel,
// and only until the voting window closes. Recorded votes are kept.
func (e *Engine) CancelProposal(caller domain.Holder, id domain.ProposalID, now time.Time) error {
	p, err := e.get(id)
	if err != nil {
		return err
	}
	if caller != p.Proposer {
		return domain.ErrUnauthorized
	}
	if p.Cancelled {
		return domain.ErrAlreadyCancelled
	}
	if now.After(p.EndTime) {
		return domain.ErrVotingWindowClosed
	}

	p.Cancelled = true
	e.emitter.Emit(domain.ProposalCancelled{ProposalID: id})
	return nil
}

func (e *Engine) get(id domain.ProposalID) (*proposalState, error) {
	if uint64(id) >= uint64(len(e.proposals)) {
		return nil, fmt.Errorf("proposal %d: %w", id, domain.ErrProposalNotFound)
	}
	return e.proposals[id], nil
}
