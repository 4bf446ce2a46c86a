package domain

import (
	"fmt"
	"math/rand/v2"
	"testing"
)

func BenchmarkSelectWeighted(b *testing.B) {
	for _, size := range []int{10, 1000} {
		candidates := make([]Quote, size)
		for i := range candidates {
			candidates[i] = Quote{ID: int64(i + 1), Weight: i%7 + 1}
		}

		rng := rand.New(rand.NewPCG(1, 1))

		b.Run(fmt.Sprintf("n=%d", size), func(b *testing.B) {
			b.ReportAllocs()

			for b.Loop() {
				SelectWeighted(candidates, 1, rng)
			}
		})
	}
}
