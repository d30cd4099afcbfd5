package governance

import (
	"fmt"

	"collection-governance/internal/domain"
)

func (e *Engine) requireAdmin(caller domain.Holder) error {
	if caller != e.cfg.Admin {
		return domain.ErrUnauthorized
	}
	return nil
}

// UpdateMinProposalVotes sets the voting power required to create a proposal.
func (e *Engine) UpdateMinProposalVotes(caller domain.Holder, value uint64) error {
	return e.UpdateThreshold(caller, domain.ThresholdMinProposalVotes, value)
}

// UpdateMinVotesToApprove sets the unique-voter quorum.
func (e *Engine) UpdateMinVotesToApprove(caller domain.Holder, value uint64) error {
	return e.UpdateThreshold(caller, domain.ThresholdMinVotesToApprove, value)
}

// UpdateMinTokensToApprove sets the cast-weight quorum.
func (e *Engine) UpdateMinTokensToApprove(caller domain.Holder, value uint64) error {
	return e.UpdateThreshold(caller, domain.ThresholdMinTokensToApprove, value)
}

// UpdateThreshold sets one governance threshold and emits its old and new values.
// Thresholds apply immediately, including to proposals already created.
func (e *Engine) UpdateThreshold(caller domain.Holder, th domain.Threshold, value uint64) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if value == 0 {
		return fmt.Errorf("%s must be positive: %w", th, domain.ErrInvalidValue)
	}

	target, err := e.thresholdField(th)
	if err != nil {
		return err
	}
	old := *target
	*target = value

	e.emitter.Emit(domain.ThresholdUpdated{Threshold: th, Old: old, New: value})
	return nil
}

func (e *Engine) thresholdField(th domain.Threshold) (*uint64, error) {
	switch th {
	case domain.ThresholdMinProposalVotes:
		return &e.cfg.MinProposalVotes, nil
	case domain.ThresholdMinVotesToApprove:
		return &e.cfg.MinVotesToApprove, nil
	case domain.ThresholdMinTokensToApprove:
		return &e.cfg.MinTokensToApprove, nil
	}
	return nil, fmt.Errorf("threshold %q: %w", th, domain.ErrInvalidValue)
}

// UpdateLedgerReference switches the voting power source.
func (e *Engine) UpdateLedgerReference(caller domain.Holder, src VotingPowerSource) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if src == nil || src.Address().IsZero() {
		return domain.ErrInvalidReference
	}
	old := e.power.Address()
	if src.Address() == old {
		return domain.ErrNoOpUpdate
	}

	e.power = src
	e.emitter.Emit(domain.LedgerReferenceUpdated{Old: old, New: src.Address()})
	return nil
}
