// Package dataset defines the canonical in-memory form of a curated gene
// expression dataset: a numeric matrix indexed by gene (rows) and sample
// (columns), a group label per sample, and the dataset metadata record.
//
// These types are the contract between the curation pipeline (which produces
// them) and the differential expression engine (which consumes them). The two
// sides never call each other directly; they meet only at the store, which
// persists and reconstructs these values.
//
// Invariants enforced by Matrix.Validate:
//   - len(Values) == len(Genes), and every row has len(Samples) columns
//   - len(Groups) == len(Samples); every label is "normal" or "cancer"
//   - gene and sample identifiers are unique within the matrix
package dataset
