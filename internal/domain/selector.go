package domain

import (
	"math/rand/v2"
	"sort"
)

// IntNSource draws uniform random integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type IntNSource interface {
	Int64N(n int64) int64
}

type globalRand struct{}

func (globalRand) Int64N(n int64) int64 { return rand.Int64N(n) }

// DefaultRand draws from the math/rand/v2 global source, which is safe for
// concurrent use.
var DefaultRand IntNSource = globalRand{}

// SelectWeighted picks one quote with probability proportional to its weight.
//
// A non-zero excludeID removes that quote from the candidates. Candidates are
// scanned in ascending id order so a given draw always maps to the same quote.
// It returns nil only when no candidate remains. When every weight is zero or
// negative the pick is uniform.
//
// SelectWeighted does not modify candidates.
func SelectWeighted(candidates []Quote, excludeID int64, rng IntNSource) *Quote {
	if rng == nil {
		rng = DefaultRand
	}

	pool := make([]*Quote, 0, len(candidates))
	for i := range candidates {
		if excludeID != 0 && candidates[i].ID == excludeID {
			continue
		}

		pool = append(pool, &candidates[i])
	}

	if len(pool) == 0 {
		return nil
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })

	var total int64
	for _, q := range pool {
		total += clampWeight(q.Weight)
	}

	if total <= 0 {
		return pool[rng.Int64N(int64(len(pool)))]
	}

	r := rng.Int64N(total)

	var acc int64
	for _, q := range pool {
		w := clampWeight(q.Weight)
		if w == 0 {
			continue
		}

		acc += w
		if acc > r {
			return q
		}
	}

	// unreachable: acc reaches total > r
	return pool[len(pool)-1]
}

// clampWeight maps a weight into [0, MaxWeight]. Stored weights are already
// in range; the clamp keeps the sum exact for quotes built elsewhere.
func clampWeight(w int) int64 {
	switch {
	case w <= 0:
		return 0
	case w > MaxWeight:
		return MaxWeight
	default:
		return int64(w)
	}
}
