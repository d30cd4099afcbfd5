package ledger

import (
	"context"
	"fmt"

	"collection-governance/internal/domain"
)

func (l *Ledger) requireAdmin(caller domain.Holder) error {
	if caller != l.cfg.Admin {
		return domain.ErrUnauthorized
	}
	return nil
}

// SetBaseURI replaces the base URI used for items without an override.
func (l *Ledger) SetBaseURI(caller domain.Holder, uri string) error {
	if err := l.requireAdmin(caller); err != nil {
		return err
	}
	l.baseURI = uri
	l.emitter.Emit(domain.BaseURIUpdated{URI: uri})
	return nil
}

// SetItemURI sets the URI override of one item. An empty uri clears the override.
func (l *Ledger) SetItemURI(caller domain.Holder, id domain.ItemID, uri string) error {
	if err := l.requireAdmin(caller); err != nil {
		return err
	}
	if !l.validID(id) {
		return fmt.Errorf("item %d: %w", id, domain.ErrItemNotFound)
	}
	l.setOverride(id, uri)
	l.emitter.Emit(domain.ItemURIUpdated{ItemID: id, URI: uri})
	return nil
}

func (l *Ledger) setOverride(id domain.ItemID, uri string) {
	if uri == "" {
		delete(l.overrides, id)
		return
	}
	l.overrides[id] = uri
}

// Withdraw sweeps the payment-token balance held by the ledger address to the admin.
// Purchases pay the beneficiary directly, so this only recovers stray transfers.
func (l *Ledger) Withdraw(ctx context.Context, caller domain.Holder) (uint64, error) {
	if err := l.requireAdmin(caller); err != nil {
		return 0, err
	}

	balance, err := l.payment.BalanceOf(ctx, l.self)
	if err != nil {
		return 0, fmt.Errorf("get ledger balance: %w", err)
	}
	if balance == 0 {
		return 0, domain.ErrNothingToWithdraw
	}

	if err := l.payment.Transfer(ctx, l.cfg.Admin, balance); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrPaymentFailed, err)
	}

	l.emitter.Emit(domain.PaymentWithdrawn{Token: l.payment.Symbol(), To: l.cfg.Admin, Amount: balance})
	return balance, nil
}
