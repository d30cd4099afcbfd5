package ledger

import (
	"math/rand"
	"testing"

	"collection-governance/internal/domain"
)

// linearLowest is the reference scan the index replaces.
func linearLowest(taken []bool) domain.ItemID {
	for i, t := range taken {
		if !t {
			return domain.ItemID(i + 1)
		}
	}
	return 0
}

func TestFreeIndex_MatchesLinearScan(t *testing.T) {
	for _, n := range []uint64{1, 2, 7, 8, 188, 1000} {
		f := newFreeIndex(n)
		taken := make([]bool, n)
		rng := rand.New(rand.NewSource(int64(n)))

		for step := uint64(0); step < n; step++ {
			if got, want := f.lowest(), linearLowest(taken); got != want {
				t.Fatalf("n=%d step=%d: lowest() = %d, want %d", n, step, got, want)
			}

			// Mix lowest-first takes with arbitrary ones.
			var id domain.ItemID
			if rng.Intn(2) == 0 {
				id = f.lowest()
			} else {
				for {
					id = domain.ItemID(rng.Int63n(int64(n)) + 1)
					if !taken[id-1] {
						break
					}
				}
			}
			f.take(id)
			taken[id-1] = true
		}

		if f.count() != 0 || f.lowest() != 0 {
			t.Errorf("n=%d: expected exhausted index, count=%d lowest=%d", n, f.count(), f.lowest())
		}
	}
}
