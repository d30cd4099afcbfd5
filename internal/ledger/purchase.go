package ledger

import (
	"context"
	"fmt"

	"collection-governance/internal/domain"
)

// Purchase charges buyer for quantity items and assigns the lowest available ids.
//
// Checks run in order: quantity, live supply, holder cap, payment. Payment is
// taken before any ownership changes; a failed payment leaves the ledger untouched.
// One ItemAllocated event is emitted per assigned id.
func (l *Ledger) Purchase(ctx context.Context, buyer domain.Holder, quantity uint64) ([]domain.ItemID, error) {
	if err := l.checkBuyer(buyer); err != nil {
		return nil, err
	}
	if quantity == 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if quantity > l.free.count() {
		return nil, fmt.Errorf("requested %d, %d available: %w", quantity, l.free.count(), domain.ErrSupplyExceeded)
	}
	if quantity > l.RemainingQuota(buyer) {
		return nil, fmt.Errorf("requested %d, quota %d: %w", quantity, l.RemainingQuota(buyer), domain.ErrWalletCapExceeded)
	}

	// Cannot overflow: quantity <= MaxPerHolder, checked at construction.
	total := l.cfg.PricePerItem * quantity
	if err := l.payment.TransferFrom(ctx, buyer, l.cfg.PaymentReceiver(), total); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPaymentFailed, err)
	}

	ids := make([]domain.ItemID, 0, quantity)
	for i := uint64(0); i < quantity; i++ {
		id := l.free.lowest()
		l.assign(id, buyer)
		ids = append(ids, id)
	}
	l.purchased[buyer] += quantity

	for _, id := range ids {
		l.emitter.Emit(domain.ItemAllocated{ItemID: id, Buyer: buyer, UnitPrice: l.cfg.PricePerItem})
	}
	return ids, nil
}

// QuotePrice returns the total price of quantity items.
func (l *Ledger) QuotePrice(quantity uint64) (uint64, error) {
	if quantity == 0 {
		return 0, domain.ErrInvalidQuantity
	}
	if quantity > l.cfg.MaxPerHolder {
		return 0, domain.ErrWalletCapExceeded
	}
	return l.cfg.PricePerItem * quantity, nil
}
