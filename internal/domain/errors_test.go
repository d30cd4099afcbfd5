package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"direct", ErrWalletCapExceeded, "WALLET_CAP_EXCEEDED"},
		{"wrapped", fmt.Errorf("purchase: %w", ErrSupplyExceeded), "SUPPLY_EXCEEDED"},
		{"payment wraps port reason", fmt.Errorf("%w: %w", ErrPaymentFailed, errors.New("allowance")), "PAYMENT_FAILED"},
		{"foreign", errors.New("disk full"), "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCategory
	}{
		{ErrUnauthorized, CategoryAuthorization},
		{ErrInvalidQuantity, CategoryValidation},
		{ErrThrottleActive, CategoryRule},
		{ErrPaymentFailed, CategoryPayment},
		{ErrProposalNotFound, CategoryNotFound},
		{errors.New("boom"), CategoryInternal},
	}

	for _, tt := range tests {
		if got := CategoryOf(tt.err); got != tt.want {
			t.Errorf("CategoryOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}

	if IsDomainError(errors.New("boom")) {
		t.Error("foreign error classified as domain error")
	}
	if !IsDomainError(fmt.Errorf("vote: %w", ErrAlreadyVoted)) {
		t.Error("wrapped domain error not recognized")
	}
}

func TestErrorClassesCoverAllSentinels(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range errorClasses {
		if seen[c.code] {
			t.Errorf("duplicate code %s", c.code)
		}
		seen[c.code] = true
	}
	if len(seen) != 23 {
		t.Errorf("expected 23 classified errors, got %d", len(seen))
	}
}
