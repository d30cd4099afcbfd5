package domain

import "errors"

// Allocation ledger errors.
var (
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrSupplyExceeded    = errors.New("quantity exceeds available supply")
	ErrWalletCapExceeded = errors.New("quantity exceeds per-holder limit")
	ErrPaymentFailed     = errors.New("payment transfer failed")
	ErrItemNotFound      = errors.New("item does not exist")
	ErrInvalidHolder     = errors.New("holder is malformed or reserved")
	ErrNothingToWithdraw = errors.New("no balance to withdraw")
)

// Governance errors.
var (
	ErrInsufficientStake  = errors.New("voting power below proposal threshold")
	ErrInvalidWindow      = errors.New("invalid voting window")
	ErrThrottleActive     = errors.New("proposal cooldown has not elapsed")
	ErrInvalidMetadata    = errors.New("proposal metadata is incomplete")
	ErrProposalNotFound   = errors.New("proposal does not exist")
	ErrProposalCancelled  = errors.New("proposal is cancelled")
	ErrVotingNotStarted   = errors.New("voting has not started")
	ErrVotingEnded        = errors.New("voting has ended")
	ErrAlreadyVoted       = errors.New("holder has already voted")
	ErrNoStake            = errors.New("holder has no voting power")
	ErrAlreadyCancelled   = errors.New("proposal already cancelled")
	ErrVotingWindowClosed = errors.New("voting window has closed")
)

// Shared errors.
var (
	ErrUnauthorized     = errors.New("caller is not authorized")
	ErrInvalidValue     = errors.New("invalid value")
	ErrInvalidReference = errors.New("invalid reference")
	ErrNoOpUpdate       = errors.New("update does not change state")
)

// ErrorCategory groups domain errors by the kind of rule they enforce.
type ErrorCategory string

const (
	CategoryAuthorization ErrorCategory = "authorization"
	CategoryValidation    ErrorCategory = "validation"
	CategoryRule          ErrorCategory = "rule"
	CategoryPayment       ErrorCategory = "payment"
	CategoryNotFound      ErrorCategory = "not_found"
	CategoryInternal      ErrorCategory = "internal"
)

type errorClass struct {
	err      error
	code     string
	category ErrorCategory
}

var errorClasses = []errorClass{
	{ErrInvalidQuantity, "INVALID_QUANTITY", CategoryValidation},
	{ErrSupplyExceeded, "SUPPLY_EXCEEDED", CategoryRule},
	{ErrWalletCapExceeded, "WALLET_CAP_EXCEEDED", CategoryRule},
	{ErrPaymentFailed, "PAYMENT_FAILED", CategoryPayment},
	{ErrItemNotFound, "ITEM_NOT_FOUND", CategoryNotFound},
	{ErrInvalidHolder, "INVALID_HOLDER", CategoryValidation},
	{ErrNothingToWithdraw, "NOTHING_TO_WITHDRAW", CategoryRule},
	{ErrInsufficientStake, "INSUFFICIENT_STAKE", CategoryRule},
	{ErrInvalidWindow, "INVALID_WINDOW", CategoryValidation},
	{ErrThrottleActive, "THROTTLE_ACTIVE", CategoryRule},
	{ErrInvalidMetadata, "INVALID_METADATA", CategoryValidation},
	{ErrProposalNotFound, "PROPOSAL_NOT_FOUND", CategoryNotFound},
	{ErrProposalCancelled, "PROPOSAL_CANCELLED", CategoryRule},
	{ErrVotingNotStarted, "VOTING_NOT_STARTED", CategoryRule},
	{ErrVotingEnded, "VOTING_ENDED", CategoryRule},
	{ErrAlreadyVoted, "ALREADY_VOTED", CategoryRule},
	{ErrNoStake, "NO_STAKE", CategoryRule},
	{ErrAlreadyCancelled, "ALREADY_CANCELLED", CategoryRule},
	{ErrVotingWindowClosed, "VOTING_WINDOW_CLOSED", CategoryRule},
	{ErrUnauthorized, "UNAUTHORIZED", CategoryAuthorization},
	{ErrInvalidValue, "INVALID_VALUE", CategoryValidation},
	{ErrInvalidReference, "INVALID_REFERENCE", CategoryValidation},
	{ErrNoOpUpdate, "NO_OP_UPDATE", CategoryValidation},
}

// Code returns a stable machine-readable code for err.
// Errors outside the domain map to "INTERNAL"; nil maps to "".
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range errorClasses {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "INTERNAL"
}

// CategoryOf returns the category of err. Errors outside the domain are internal.
func CategoryOf(err error) ErrorCategory {
	for _, c := range errorClasses {
		if errors.Is(err, c.err) {
			return c.category
		}
	}
	return CategoryInternal
}

// IsDomainError reports whether err wraps one of the domain sentinels.
func IsDomainError(err error) bool {
	return err != nil && CategoryOf(err) != CategoryInternal
}
