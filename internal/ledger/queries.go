package ledger

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"collection-governance/internal/domain"
)

// HolderSummary is the purchase count of one holder.
type HolderSummary struct {
	Holder    domain.Holder
	Purchased uint64
}

// BaseURI returns the current base URI.
func (l *Ledger) BaseURI() string {
	return l.baseURI
}

// TotalSupply returns the number of items in the collection.
func (l *Ledger) TotalSupply() uint64 {
	return l.cfg.TotalSupply
}

// PricePerItem returns the unit price in payment-token base units.
func (l *Ledger) PricePerItem() uint64 {
	return l.cfg.PricePerItem
}

// MaxPerHolder returns the per-holder purchase cap.
func (l *Ledger) MaxPerHolder() uint64 {
	return l.cfg.MaxPerHolder
}

// ResolveURI returns the item's override URI, or baseURI + id + ".json".
func (l *Ledger) ResolveURI(id domain.ItemID) (string, error) {
	if !l.validID(id) {
		return "", fmt.Errorf("item %d: %w", id, domain.ErrItemNotFound)
	}
	if uri, ok := l.overrides[id]; ok {
		return uri, nil
	}
	return l.baseURI + strconv.FormatUint(uint64(id), 10) + ".json", nil
}

// IsAvailable reports whether id exists and is still owned by the ledger.
func (l *Ledger) IsAvailable(id domain.ItemID) bool {
	return l.validID(id) && l.owners[id-1] == l.self
}

// AvailableCount returns the number of unsold items.
func (l *Ledger) AvailableCount() uint64 {
	return l.free.count()
}

// SoldCount returns the number of items assigned to holders.
func (l *Ledger) SoldCount() uint64 {
	return l.cfg.TotalSupply - l.free.count()
}

// RemainingQuota returns how many more items holder may buy.
func (l *Ledger) RemainingQuota(holder domain.Holder) uint64 {
	return l.cfg.MaxPerHolder - l.purchased[holder]
}

// Purchased returns the number of items holder has bought.
func (l *Ledger) Purchased(holder domain.Holder) uint64 {
	return l.purchased[holder]
}

// VotingPower returns the live voting power of holder: its purchase count.
func (l *Ledger) VotingPower(holder domain.Holder) uint64 {
	return l.purchased[holder]
}

// OwnerOf returns the owner of id. Unsold items are owned by the ledger address.
func (l *Ledger) OwnerOf(id domain.ItemID) (domain.Holder, error) {
	if !l.validID(id) {
		return "", fmt.Errorf("item %d: %w", id, domain.ErrItemNotFound)
	}
	return l.owners[id-1], nil
}

// Item returns a view of one item.
func (l *Ledger) Item(id domain.ItemID) (domain.Item, error) {
	if !l.validID(id) {
		return domain.Item{}, fmt.Errorf("item %d: %w", id, domain.ErrItemNotFound)
	}
	owner := l.owners[id-1]
	return domain.Item{
		ID:          id,
		Owner:       owner,
		Available:   owner == l.self,
		URIOverride: l.overrides[id],
	}, nil
}

// ItemsOf returns the ids owned by holder in ascending order.
func (l *Ledger) ItemsOf(holder domain.Holder) []domain.ItemID {
	if l.purchased[holder] == 0 {
		return nil
	}
	ids := make([]domain.ItemID, 0, l.purchased[holder])
	for i, owner := range l.owners {
		if owner == holder {
			ids = append(ids, domain.ItemID(i+1))
		}
	}
	return ids
}

// Holders returns every holder with at least one purchase, largest first,
// ties broken by address.
func (l *Ledger) Holders() []HolderSummary {
	out := make([]HolderSummary, 0, len(l.purchased))
	for h, n := range l.purchased {
		out = append(out, HolderSummary{Holder: h, Purchased: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Purchased != out[j].Purchased {
			return out[i].Purchased > out[j].Purchased
		}
		return out[i].Holder < out[j].Holder
	})
	return out
}

// PaymentBalance returns the payment-token balance held by the ledger address.
func (l *Ledger) PaymentBalance(ctx context.Context) (uint64, error) {
	balance, err := l.payment.BalanceOf(ctx, l.self)
	if err != nil {
		return 0, fmt.Errorf("get ledger balance: %w", err)
	}
	return balance, nil
}
