package dge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBenjaminiHochberg(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{
			name: "empty",
			in:   []float64{},
			want: []float64{},
		},
		{
			name: "single value unchanged",
			in:   []float64{0.03},
			want: []float64{0.03},
		},
		{
			name: "extremes unchanged",
			in:   []float64{0, 1},
			want: []float64{0, 1},
		},
		{
			name: "classic vector",
			// p * n/rank = {0.01*4/1, 0.02*4/2, 0.03*4/3, 0.04*4/4},
			// then cumulative min from the top.
			in:   []float64{0.01, 0.02, 0.03, 0.04},
			want: []float64{0.04, 0.04, 0.04, 0.04},
		},
		{
			name: "monotonicity enforced",
			in:   []float64{0.005, 0.009, 0.05, 0.5},
			want: []float64{0.018, 0.018, 0.06666666666666667, 0.5},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := benjaminiHochberg(tc.in)
			assert.InDeltaSlice(t, tc.want, got, 1e-12)
		})
	}
}

func TestBenjaminiHochberg_PreservesInputOrder(t *testing.T) {
	in := []float64{0.5, 0.001, 0.04}
	got := benjaminiHochberg(in)

	// Adjusted values map back to their input positions, not sorted order.
	assert.Equal(t, 3, len(got))
	assert.Less(t, got[1], got[2])
	assert.Less(t, got[2], got[0])
}

func TestBenjaminiHochberg_ClippedAtOne(t *testing.T) {
	got := benjaminiHochberg([]float64{0.9, 0.95, 1.0})
	for _, p := range got {
		assert.LessOrEqual(t, p, 1.0)
	}
}
