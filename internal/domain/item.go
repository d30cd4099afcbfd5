package domain

// ItemID numbers an item within the collection. Valid ids are [1, TotalSupply].
type ItemID uint64

// Item is a point-in-time view of one collection slot.
type Item struct {
	ID          ItemID
	Owner       Holder // ledger sentinel while unsold
	Available   bool   // true iff Owner is the ledger sentinel
	URIOverride string // empty when no per-item URI is set
}
