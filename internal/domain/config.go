package domain

import (
	"fmt"
	"math/bits"
	"time"
)

// Collection defaults.
const (
	DefaultTotalSupply  uint64 = 188
	DefaultPricePerItem uint64 = 1_000_000 // 1 unit of a 6-decimal payment token
	DefaultMaxPerHolder uint64 = 10
)

// Governance defaults.
const (
	DefaultMinProposalVotes   uint64 = 10
	DefaultMinVotesToApprove  uint64 = 10
	DefaultMinTokensToApprove uint64 = 50
	DefaultProposalCooldown          = 24 * time.Hour
)

// LedgerConfig holds the allocation ledger parameters.
// Everything except BaseURI is immutable after construction.
type LedgerConfig struct {
	Name         string
	Symbol       string
	TotalSupply  uint64
	PricePerItem uint64 // payment-token base units per item
	MaxPerHolder uint64
	BaseURI      string
	Admin        Holder
	Beneficiary  Holder // receives purchase payments; Admin when empty
}

// Validate checks that the configuration can back a ledger.
func (c LedgerConfig) Validate() error {
	if c.TotalSupply == 0 {
		return fmt.Errorf("total supply: %w", ErrInvalidValue)
	}
	if c.MaxPerHolder == 0 {
		return fmt.Errorf("max per holder: %w", ErrInvalidValue)
	}
	if c.Admin.IsZero() {
		return fmt.Errorf("admin: %w", ErrInvalidReference)
	}
	if hi, _ := bits.Mul64(c.PricePerItem, c.MaxPerHolder); hi != 0 {
		return fmt.Errorf("price per item overflows holder cap: %w", ErrInvalidValue)
	}
	return nil
}

// PaymentReceiver returns the holder credited by purchases.
func (c LedgerConfig) PaymentReceiver() Holder {
	if c.Beneficiary.IsZero() {
		return c.Admin
	}
	return c.Beneficiary
}

// GovernanceConfig holds the governance thresholds.
type GovernanceConfig struct {
	MinProposalVotes   uint64        // voting power required to propose
	MinVotesToApprove  uint64        // unique voters required for approval
	MinTokensToApprove uint64        // total cast weight required for approval
	ProposalCooldown   time.Duration // minimum interval between proposals per proposer
	Admin              Holder
}

// Validate checks that the configuration can back a governance engine.
func (c GovernanceConfig) Validate() error {
	if c.MinProposalVotes == 0 {
		return fmt.Errorf("min proposal votes: %w", ErrInvalidValue)
	}
	if c.MinVotesToApprove == 0 {
		return fmt.Errorf("min votes to approve: %w", ErrInvalidValue)
	}
	if c.MinTokensToApprove == 0 {
		return fmt.Errorf("min tokens to approve: %w", ErrInvalidValue)
	}
	if c.ProposalCooldown < 0 {
		return fmt.Errorf("proposal cooldown: %w", ErrInvalidValue)
	}
	if c.Admin.IsZero() {
		return fmt.Errorf("admin: %w", ErrInvalidReference)
	}
	return nil
}

// Threshold names an adjustable governance threshold.
type Threshold string

const (
	ThresholdMinProposalVotes   Threshold = "MIN_PROPOSAL_VOTES"
	ThresholdMinVotesToApprove  Threshold = "MIN_VOTES_TO_APPROVE"
	ThresholdMinTokensToApprove Threshold = "MIN_TOKENS_TO_APPROVE"
)

// String returns the string representation of Threshold.
func (t Threshold) String() string {
	return string(t)
}

// IsValid checks if the threshold is a known value.
func (t Threshold) IsValid() bool {
	return t == ThresholdMinProposalVotes || t == ThresholdMinVotesToApprove || t == ThresholdMinTokensToApprove
}
