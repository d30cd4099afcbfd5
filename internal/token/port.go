// Package token defines the fungible payment token port used by the ledger
// and an in-memory, allowance-based implementation of it.
package token

import (
	"context"
	"errors"

	"collection-governance/internal/domain"
)

// Transfer errors reported by token implementations.
var (
	ErrInsufficientBalance   = errors.New("insufficient token balance")
	ErrInsufficientAllowance = errors.New("insufficient token allowance")
)

// Port is the payment token as seen by one spender (the ledger).
type Port interface {
	// Symbol identifies the token in events.
	Symbol() string
	// BalanceOf returns the balance of holder.
	BalanceOf(ctx context.Context, holder domain.Holder) (uint64, error)
	// TransferFrom moves amount from payer to payee using the spender's allowance.
	TransferFrom(ctx context.Context, payer, payee domain.Holder, amount uint64) error
	// Transfer moves amount out of the spender's own balance.
	Transfer(ctx context.Context, to domain.Holder, amount uint64) error
}
