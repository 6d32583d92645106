package dge

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kabilan108/cabid/internal/dataset"
)

// Options controls thresholds and the statistical variant of an analysis.
// The zero value is not useful; start from DefaultOptions.
type Options struct {
	// PThreshold is the adjusted p-value a gene must fall below to be
	// flagged significant.
	PThreshold float64

	// FCThreshold is the absolute log2 fold change a gene must exceed to
	// be flagged significant.
	FCThreshold float64

	// MinGroupSize is the minimum number of samples each group must have
	// before any test runs.
	MinGroupSize int

	// Epsilon floors group means before the log2 transform so that
	// zero-mean genes produce a finite fold change.
	Epsilon float64

	// EqualVariance switches from Welch's test to the pooled-variance
	// t-test. Welch is the default because microarray group variances
	// are rarely equal.
	EqualVariance bool
}

// DefaultOptions returns the standard analysis configuration.
func DefaultOptions() Options {
	return Options{
		PThreshold:   0.05,
		FCThreshold:  1.0,
		MinGroupSize: 2,
		Epsilon:      1e-9,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PThreshold <= 0 {
		o.PThreshold = d.PThreshold
	}
	if o.FCThreshold < 0 {
		o.FCThreshold = d.FCThreshold
	}
	if o.MinGroupSize < 2 {
		o.MinGroupSize = d.MinGroupSize
	}
	if o.Epsilon <= 0 {
		o.Epsilon = d.Epsilon
	}
	return o
}

// Result holds the differential expression statistics for one gene.
type Result struct {
	GeneID      string  `json:"gene_id"`
	MeanNormal  float64 `json:"mean_normal"`
	MeanCancer  float64 `json:"mean_cancer"`
	LogFC       float64 `json:"log_fc"`
	PValue      float64 `json:"p_value"`
	AdjPValue   float64 `json:"adj_p_value"`
	Significant bool    `json:"significant"`
}

// NegLog10AdjP returns -log10 of the adjusted p-value, the conventional
// y-axis of a volcano plot. An adjusted p of zero maps to +Inf.
func (r Result) NegLog10AdjP() float64 {
	return -math.Log10(r.AdjPValue)
}

// Loader is the store capability the analysis path needs: one matrix read.
type Loader interface {
	LoadExpression(ctx context.Context, id string) (*dataset.Matrix, error)
}

// Analyze loads a curated dataset's matrix and runs differential expression
// on it. Store errors, including DatasetNotFoundError, pass through
// unwrapped so callers can classify them.
func Analyze(ctx context.Context, loader Loader, id string, opts Options) ([]Result, error) {
	m, err := loader.LoadExpression(ctx, id)
	if err != nil {
		return nil, err
	}

	results, err := AnalyzeMatrix(m, opts)
	if err != nil {
		var ie *InsufficientGroupsError
		if errors.As(err, &ie) {
			ie.Dataset = id
		}
		return nil, err
	}
	return results, nil
}

// AnalyzeMatrix computes per-gene differential expression statistics for a
// canonical matrix. Pure: no I/O, no shared state, so concurrent calls on
// distinct or shared matrices are safe.
//
// The result slice has exactly one entry per gene, ranked by adjusted
// p-value ascending, then absolute log2 fold change descending, then gene
// identifier.
func AnalyzeMatrix(m *dataset.Matrix, opts Options) ([]Result, error) {
	opts = opts.withDefaults()

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	sizes := m.GroupSizes()
	for _, g := range []dataset.GroupLabel{dataset.GroupNormal, dataset.GroupCancer} {
		if sizes[g] < opts.MinGroupSize {
			return nil, &InsufficientGroupsError{Group: g, Count: sizes[g], Min: opts.MinGroupSize}
		}
	}

	test := welchTest
	if opts.EqualVariance {
		test = pooledTest
	}

	results := make([]Result, m.GeneCount())
	pvals := make([]float64, m.GeneCount())
	for i := range m.Genes {
		normal, cancer := m.SplitRow(i)
		meanN := stat.Mean(normal, nil)
		meanC := stat.Mean(cancer, nil)

		pvals[i] = test(cancer, normal)
		results[i] = Result{
			GeneID:     m.Genes[i],
			MeanNormal: meanN,
			MeanCancer: meanC,
			LogFC:      log2FoldChange(meanN, meanC, opts.Epsilon),
			PValue:     pvals[i],
		}
	}

	adjusted := benjaminiHochberg(pvals)
	for i := range results {
		results[i].AdjPValue = adjusted[i]
		results[i].Significant = adjusted[i] < opts.PThreshold &&
			math.Abs(results[i].LogFC) > opts.FCThreshold
	}

	sortResults(results)
	return results, nil
}

// TopGenes returns the first n ranked results, or all of them when the
// analysis produced fewer than n.
func TopGenes(results []Result, n int) []Result {
	if n < 0 {
		n = 0
	}
	if n > len(results) {
		n = len(results)
	}
	return results[:n]
}

// log2FoldChange is log2(cancer mean) - log2(normal mean), with each mean
// floored at epsilon. Positive values mean higher expression in cancer.
func log2FoldChange(meanNormal, meanCancer, epsilon float64) float64 {
	return math.Log2(math.Max(meanCancer, epsilon)) - math.Log2(math.Max(meanNormal, epsilon))
}

func sortResults(results []Result) {
	sort.Slice(results, func(a, b int) bool {
		if results[a].AdjPValue != results[b].AdjPValue {
			return results[a].AdjPValue < results[b].AdjPValue
		}
		fa, fb := math.Abs(results[a].LogFC), math.Abs(results[b].LogFC)
		if fa != fb {
			return fa > fb
		}
		return results[a].GeneID < results[b].GeneID
	})
}
