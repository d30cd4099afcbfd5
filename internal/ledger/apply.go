package ledger

import (
	"errors"
	"fmt"

	"collection-governance/internal/domain"
)

// ErrOutOfOrder is returned when a replayed allocation skips a lower available id.
var ErrOutOfOrder = errors.New("allocation does not follow ascending order")

// ApplyAllocation restores an allocation from the event log without charging payment.
// The allocation must target the lowest available id and respect the holder cap.
func (l *Ledger) ApplyAllocation(e domain.ItemAllocated) error {
	if err := l.checkBuyer(e.Buyer); err != nil {
		return err
	}
	if !l.IsAvailable(e.ItemID) {
		return fmt.Errorf("item %d not available: %w", e.ItemID, domain.ErrItemNotFound)
	}
	if lowest := l.free.lowest(); lowest != e.ItemID {
		return fmt.Errorf("item %d allocated before %d: %w", e.ItemID, lowest, ErrOutOfOrder)
	}
	if l.RemainingQuota(e.Buyer) == 0 {
		return fmt.Errorf("holder %s: %w", e.Buyer, domain.ErrWalletCapExceeded)
	}
	l.assign(e.ItemID, e.Buyer)
	l.purchased[e.Buyer]++
	return nil
}

// ApplyBaseURI restores a base URI change.
func (l *Ledger) ApplyBaseURI(e domain.BaseURIUpdated) {
	l.baseURI = e.URI
}

// ApplyItemURI restores a per-item URI change.
func (l *Ledger) ApplyItemURI(e domain.ItemURIUpdated) error {
	if !l.validID(e.ItemID) {
		return fmt.Errorf("item %d: %w", e.ItemID, domain.ErrItemNotFound)
	}
	l.setOverride(e.ItemID, e.URI)
	return nil
}
