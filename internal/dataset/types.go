package dataset

import (
	"fmt"
	"strings"
	"time"
)

// GroupLabel classifies a sample as normal or cancer tissue.
type GroupLabel string

const (
	GroupNormal GroupLabel = "normal"
	GroupCancer GroupLabel = "cancer"
)

// Valid reports whether the label is one of the two supported groups.
func (g GroupLabel) Valid() bool {
	return g == GroupNormal || g == GroupCancer
}

// Classify derives a group label from a sample's description field.
// Descriptions containing "normal" (case-insensitive) are normal tissue;
// everything else is treated as cancer. This matches how the source datasets
// label their two classes ("normal" vs. a tumor type string).
func Classify(description string) GroupLabel {
	if strings.Contains(strings.ToLower(description), string(GroupNormal)) {
		return GroupNormal
	}
	return GroupCancer
}

// Metadata identifies one curated dataset.
// Created on first successful curation and never mutated afterward.
type Metadata struct {
	ID          string    `json:"dataset_id"`  // e.g. "GSE31189"
	CancerType  string    `json:"cancer_type"` // e.g. "bladder"
	Platform    string    `json:"platform"`    // e.g. "GPL570"
	SampleCount int       `json:"sample_count"`
	GeneCount   int       `json:"gene_count"`
	CuratedAt   time.Time `json:"curated_at"`
}

// Matrix is a gene expression matrix in canonical form.
//
// Values is gene-major: Values[i][j] is the expression of Genes[i] in
// Samples[j]. Groups is parallel to Samples. Identifiers are stable strings;
// no numeric ordering is assumed.
type Matrix struct {
	Genes   []string     `json:"genes"`
	Samples []string     `json:"samples"`
	Groups  []GroupLabel `json:"groups"`
	Values  [][]float64  `json:"values"`
}

// GeneCount returns the number of gene rows.
func (m *Matrix) GeneCount() int { return len(m.Genes) }

// SampleCount returns the number of sample columns.
func (m *Matrix) SampleCount() int { return len(m.Samples) }

// Validate checks the matrix invariants: consistent shape, parallel group
// labels, valid labels, and unique identifiers.
func (m *Matrix) Validate() error {
	if len(m.Values) != len(m.Genes) {
		return fmt.Errorf("matrix has %d value rows for %d genes", len(m.Values), len(m.Genes))
	}
	if len(m.Groups) != len(m.Samples) {
		return fmt.Errorf("matrix has %d group labels for %d samples", len(m.Groups), len(m.Samples))
	}
	for i, row := range m.Values {
		if len(row) != len(m.Samples) {
			return fmt.Errorf("gene %q has %d values for %d samples", m.Genes[i], len(row), len(m.Samples))
		}
	}
	for i, g := range m.Groups {
		if !g.Valid() {
			return fmt.Errorf("sample %q has invalid group label %q", m.Samples[i], g)
		}
	}

	seen := make(map[string]bool, len(m.Genes))
	for _, gene := range m.Genes {
		if seen[gene] {
			return fmt.Errorf("duplicate gene identifier %q", gene)
		}
		seen[gene] = true
	}
	seen = make(map[string]bool, len(m.Samples))
	for _, sample := range m.Samples {
		if seen[sample] {
			return fmt.Errorf("duplicate sample identifier %q", sample)
		}
		seen[sample] = true
	}

	return nil
}

// GroupSizes returns the number of samples carrying each group label.
func (m *Matrix) GroupSizes() map[GroupLabel]int {
	sizes := make(map[GroupLabel]int, 2)
	for _, g := range m.Groups {
		sizes[g]++
	}
	return sizes
}

// SplitRow partitions one gene row's values by sample group.
// The returned slices preserve sample order within each group.
func (m *Matrix) SplitRow(i int) (normal, cancer []float64) {
	for j, g := range m.Groups {
		if g == GroupNormal {
			normal = append(normal, m.Values[i][j])
		} else {
			cancer = append(cancer, m.Values[i][j])
		}
	}
	return normal, cancer
}

// Row returns the value row for a gene identifier.
// Used by consumers that render raw expression for selected genes.
func (m *Matrix) Row(gene string) ([]float64, bool) {
	for i, g := range m.Genes {
		if g == gene {
			return m.Values[i], true
		}
	}
	return nil, false
}
