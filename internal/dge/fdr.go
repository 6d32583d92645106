package dge

import "sort"

// benjaminiHochberg applies the Benjamini-Hochberg step-up procedure to a
// vector of raw p-values and returns the adjusted p-values in the input
// order. Adjusted values are clipped to [0, 1] and the cumulative minimum
// from the largest rank down enforces monotonicity.
func benjaminiHochberg(pvals []float64) []float64 {
	n := len(pvals)
	if n == 0 {
		return []float64{}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return pvals[order[a]] < pvals[order[b]]
	})

	adjusted := make([]float64, n)
	running := 1.0
	for rank := n - 1; rank >= 0; rank-- {
		idx := order[rank]
		adj := pvals[idx] * float64(n) / float64(rank+1)
		if adj < running {
			running = adj
		}
		adjusted[idx] = running
	}
	return adjusted
}
