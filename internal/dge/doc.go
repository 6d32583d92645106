// Package dge computes differential gene expression between the normal and
// cancer groups of a curated dataset.
//
// For each gene the engine computes group means, a log2 fold change, a
// two-sample t-test p-value (Welch's unequal-variance test by default, the
// pooled variant behind an option), a Benjamini-Hochberg adjusted p-value
// across all genes, and a significance flag requiring both an adjusted
// p-value below threshold and an absolute fold change above threshold.
//
// Results are ranked by adjusted p-value ascending, ties broken by descending
// absolute fold change, then by gene identifier, so repeated analyses of the
// same dataset produce identical output.
//
// AnalyzeMatrix is a pure function of the matrix and options: it performs no
// I/O and mutates no shared state, so any number of analyses may run
// concurrently. Analyze adds the single store read in front of it.
package dge
