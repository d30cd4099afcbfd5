package ledger

import (
	"math/bits"

	"collection-governance/internal/domain"
)

// freeIndex tracks available item ids in a Fenwick tree so the lowest
// available id is found in O(log n) instead of a scan over all items.
type freeIndex struct {
	tree []uint64 // 1-based partial sums of availability flags
	n    uint64
	top  uint64 // highest power of two <= n
	free uint64
}

// newFreeIndex marks ids 1..n as available.
func newFreeIndex(n uint64) *freeIndex {
	f := &freeIndex{
		tree: make([]uint64, n+1),
		n:    n,
		free: n,
	}
	if n > 0 {
		f.top = 1 << (bits.Len64(n) - 1)
	}
	for i := uint64(1); i <= n; i++ {
		f.tree[i]++
		if j := i + (i & -i); j <= n {
			f.tree[j] += f.tree[i]
		}
	}
	return f
}

// count returns the number of available ids.
func (f *freeIndex) count() uint64 {
	return f.free
}

// take marks id as no longer available. The caller guarantees id is available.
func (f *freeIndex) take(id domain.ItemID) {
	for i := uint64(id); i <= f.n; i += i & -i {
		f.tree[i]--
	}
	f.free--
}

// lowest returns the smallest available id, or 0 when none is left.
func (f *freeIndex) lowest() domain.ItemID {
	if f.free == 0 {
		return 0
	}
	// Binary lifting: find the largest pos with prefix(pos) == 0.
	var pos uint64
	for step := f.top; step > 0; step >>= 1 {
		if next := pos + step; next <= f.n && f.tree[next] == 0 {
			pos = next
		}
	}
	return domain.ItemID(pos + 1)
}
