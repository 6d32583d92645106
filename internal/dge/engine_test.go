package dge

import (
	"context"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabilan108/cabid/internal/dataset"
	"github.com/kabilan108/cabid/internal/store"
)

// exampleMatrix is the two-gene worked example: G1 is cleanly up in cancer
// (means 1 vs 4), G2 is flat.
func exampleMatrix() *dataset.Matrix {
	return &dataset.Matrix{
		Genes:   []string{"G1", "G2"},
		Samples: []string{"S1", "S2", "S3", "S4"},
		Groups:  []dataset.GroupLabel{dataset.GroupNormal, dataset.GroupNormal, dataset.GroupCancer, dataset.GroupCancer},
		Values: [][]float64{
			{1, 1, 4, 4},
			{3, 3, 3, 3},
		},
	}
}

func TestAnalyzeMatrix_Example(t *testing.T) {
	results, err := AnalyzeMatrix(exampleMatrix(), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, results, 2)

	// G1 ranks first: adjusted p 0, log2(4/1) = 2, significant.
	g1 := results[0]
	assert.Equal(t, "G1", g1.GeneID)
	assert.Equal(t, 1.0, g1.MeanNormal)
	assert.Equal(t, 4.0, g1.MeanCancer)
	assert.Equal(t, 2.0, g1.LogFC)
	assert.Equal(t, 0.0, g1.AdjPValue)
	assert.True(t, g1.Significant)

	// G2 is flat: fold change 0, maximally non-significant.
	g2 := results[1]
	assert.Equal(t, "G2", g2.GeneID)
	assert.Equal(t, 0.0, g2.LogFC)
	assert.Equal(t, 1.0, g2.AdjPValue)
	assert.False(t, g2.Significant)
}

func TestAnalyzeMatrix_OneResultPerGene(t *testing.T) {
	m := exampleMatrix()
	results, err := AnalyzeMatrix(m, DefaultOptions())
	require.NoError(t, err)

	assert.Len(t, results, m.GeneCount())
	seen := make(map[string]bool)
	for _, r := range results {
		assert.False(t, seen[r.GeneID], "gene %s appears twice", r.GeneID)
		seen[r.GeneID] = true
	}
}

func TestAnalyzeMatrix_SignConvention(t *testing.T) {
	m := &dataset.Matrix{
		Genes:   []string{"UP", "DOWN"},
		Samples: []string{"S1", "S2", "S3", "S4"},
		Groups:  []dataset.GroupLabel{dataset.GroupNormal, dataset.GroupNormal, dataset.GroupCancer, dataset.GroupCancer},
		Values: [][]float64{
			{1, 1.1, 8, 8.2}, // higher in cancer
			{8, 8.2, 1, 1.1}, // higher in normal
		},
	}

	results, err := AnalyzeMatrix(m, DefaultOptions())
	require.NoError(t, err)

	byGene := map[string]Result{}
	for _, r := range results {
		byGene[r.GeneID] = r
	}
	assert.Positive(t, byGene["UP"].LogFC)
	assert.Negative(t, byGene["DOWN"].LogFC)
}

func TestAnalyzeMatrix_RankingInvariant(t *testing.T) {
	// Mix of strong, weak, and flat genes with varying fold changes.
	m := &dataset.Matrix{
		Genes:   []string{"A", "B", "C", "D", "E"},
		Samples: []string{"S1", "S2", "S3", "S4", "S5", "S6"},
		Groups: []dataset.GroupLabel{
			dataset.GroupNormal, dataset.GroupNormal, dataset.GroupNormal,
			dataset.GroupCancer, dataset.GroupCancer, dataset.GroupCancer,
		},
		Values: [][]float64{
			{1, 1.2, 0.9, 7.8, 8.1, 8.3},
			{5, 5.1, 4.9, 5.0, 5.2, 4.8},
			{2, 2.1, 1.9, 3.9, 4.2, 4.0},
			{6, 5.8, 6.1, 6.0, 6.2, 5.9},
			{1, 0.9, 1.1, 15.8, 16.2, 16.0},
		},
	}

	results, err := AnalyzeMatrix(m, DefaultOptions())
	require.NoError(t, err)

	isSorted := sort.SliceIsSorted(results, func(a, b int) bool {
		if results[a].AdjPValue != results[b].AdjPValue {
			return results[a].AdjPValue < results[b].AdjPValue
		}
		fa, fb := math.Abs(results[a].LogFC), math.Abs(results[b].LogFC)
		if fa != fb {
			return fa > fb
		}
		return results[a].GeneID < results[b].GeneID
	})
	assert.True(t, isSorted)

	// Determinism: a second run produces the identical ranking.
	again, err := AnalyzeMatrix(m, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, results, again)
}

func TestAnalyzeMatrix_MinGroupSizeBoundary(t *testing.T) {
	m := &dataset.Matrix{
		Genes:   []string{"G1"},
		Samples: []string{"S1", "S2", "S3"},
		Groups:  []dataset.GroupLabel{dataset.GroupNormal, dataset.GroupNormal, dataset.GroupCancer},
		Values:  [][]float64{{1, 2, 3}},
	}

	// Two normals but a single cancer sample: below the floor.
	_, err := AnalyzeMatrix(m, DefaultOptions())
	require.Error(t, err)
	assert.True(t, IsInsufficientGroups(err))

	var ie *InsufficientGroupsError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, dataset.GroupCancer, ie.Group)
	assert.Equal(t, 1, ie.Count)
	assert.Equal(t, 2, ie.Min)

	// Exactly two per group is enough.
	m.Samples = append(m.Samples, "S4")
	m.Groups = append(m.Groups, dataset.GroupCancer)
	m.Values[0] = append(m.Values[0], 4)
	results, err := AnalyzeMatrix(m, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestAnalyzeMatrix_EpsilonFloor(t *testing.T) {
	m := &dataset.Matrix{
		Genes:   []string{"ZERO"},
		Samples: []string{"S1", "S2", "S3", "S4"},
		Groups:  []dataset.GroupLabel{dataset.GroupNormal, dataset.GroupNormal, dataset.GroupCancer, dataset.GroupCancer},
		Values:  [][]float64{{0, 0, 2, 2}},
	}

	results, err := AnalyzeMatrix(m, DefaultOptions())
	require.NoError(t, err)

	// The zero normal mean is floored, so the fold change is finite.
	assert.False(t, math.IsInf(results[0].LogFC, 0))
	assert.False(t, math.IsNaN(results[0].LogFC))
	assert.Positive(t, results[0].LogFC)
}

func TestAnalyzeMatrix_EqualVarianceOption(t *testing.T) {
	m := &dataset.Matrix{
		Genes:   []string{"G1"},
		Samples: []string{"S1", "S2", "S3", "S4", "S5", "S6"},
		Groups: []dataset.GroupLabel{
			dataset.GroupNormal, dataset.GroupNormal, dataset.GroupNormal,
			dataset.GroupCancer, dataset.GroupCancer, dataset.GroupCancer,
		},
		Values: [][]float64{{10, 10.1, 9.9, 2, 18, 13}},
	}

	welch, err := AnalyzeMatrix(m, DefaultOptions())
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.EqualVariance = true
	pooled, err := AnalyzeMatrix(m, opts)
	require.NoError(t, err)

	// Same fold change, different p-value when group variances diverge.
	assert.Equal(t, welch[0].LogFC, pooled[0].LogFC)
	assert.NotEqual(t, welch[0].PValue, pooled[0].PValue)
}

func TestAnalyzeMatrix_SignificanceRequiresBoth(t *testing.T) {
	// Strongly separated but with fold change below the threshold: small
	// adjusted p alone must not flag the gene.
	m := &dataset.Matrix{
		Genes:   []string{"TIGHT"},
		Samples: []string{"S1", "S2", "S3", "S4", "S5", "S6"},
		Groups: []dataset.GroupLabel{
			dataset.GroupNormal, dataset.GroupNormal, dataset.GroupNormal,
			dataset.GroupCancer, dataset.GroupCancer, dataset.GroupCancer,
		},
		Values: [][]float64{{10, 10.01, 9.99, 11, 11.01, 10.99}},
	}

	results, err := AnalyzeMatrix(m, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Less(t, results[0].AdjPValue, 0.05)
	assert.Less(t, math.Abs(results[0].LogFC), 1.0)
	assert.False(t, results[0].Significant)
}

func TestTopGenes(t *testing.T) {
	results := []Result{{GeneID: "A"}, {GeneID: "B"}, {GeneID: "C"}}

	assert.Len(t, TopGenes(results, 2), 2)
	assert.Equal(t, "A", TopGenes(results, 2)[0].GeneID)
	assert.Len(t, TopGenes(results, 10), 3)
	assert.Empty(t, TopGenes(results, 0))
}

func TestAnalyze_PassesThroughNotFound(t *testing.T) {
	s, err := store.Open(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = Analyze(context.Background(), s, "GSE999", DefaultOptions())
	require.Error(t, err)
	assert.True(t, store.IsDatasetNotFound(err))
}

func TestAnalyze_FillsDatasetOnGroupError(t *testing.T) {
	s, err := store.Open(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	meta := dataset.Metadata{
		ID: "GSE100", CancerType: "bladder", Platform: "GPL570",
		SampleCount: 3, GeneCount: 1,
	}
	m := &dataset.Matrix{
		Genes:   []string{"G1"},
		Samples: []string{"S1", "S2", "S3"},
		Groups:  []dataset.GroupLabel{dataset.GroupNormal, dataset.GroupCancer, dataset.GroupCancer},
		Values:  [][]float64{{1, 2, 3}},
	}
	_, err = s.UpsertExpression(context.Background(), meta, m)
	require.NoError(t, err)

	_, err = Analyze(context.Background(), s, "GSE100", DefaultOptions())
	require.Error(t, err)

	var ie *InsufficientGroupsError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "GSE100", ie.Dataset)
	assert.ErrorContains(t, err, "GSE100")
}
