package dge

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// welchTest returns the two-sided p-value of Welch's unequal-variance
// two-sample t-test, with degrees of freedom from the Welch-Satterthwaite
// approximation.
func welchTest(a, b []float64) float64 {
	na, nb := float64(len(a)), float64(len(b))
	meanA, meanB := stat.Mean(a, nil), stat.Mean(b, nil)
	varA, varB := stat.Variance(a, nil), stat.Variance(b, nil)

	seA, seB := varA/na, varB/nb
	se := seA + seB
	if se == 0 {
		return degenerateP(meanA, meanB)
	}

	t := (meanA - meanB) / math.Sqrt(se)
	df := se * se / (seA*seA/(na-1) + seB*seB/(nb-1))
	return twoSidedP(t, df)
}

// pooledTest returns the two-sided p-value of the equal-variance (pooled)
// two-sample t-test.
func pooledTest(a, b []float64) float64 {
	na, nb := float64(len(a)), float64(len(b))
	meanA, meanB := stat.Mean(a, nil), stat.Mean(b, nil)
	varA, varB := stat.Variance(a, nil), stat.Variance(b, nil)

	df := na + nb - 2
	pooled := ((na-1)*varA + (nb-1)*varB) / df
	se := pooled * (1/na + 1/nb)
	if se == 0 {
		return degenerateP(meanA, meanB)
	}

	t := (meanA - meanB) / math.Sqrt(se)
	return twoSidedP(t, df)
}

// degenerateP handles zero standard error: identical groups are maximally
// non-significant, separated constant groups maximally significant. Stated
// policy - the engine never emits NaN.
func degenerateP(meanA, meanB float64) float64 {
	if meanA == meanB {
		return 1
	}
	return 0
}

// twoSidedP converts a t statistic and degrees of freedom to a two-sided
// p-value via the Student's t CDF.
func twoSidedP(t, df float64) float64 {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))
	if p > 1 {
		return 1
	}
	return p
}
