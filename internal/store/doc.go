// Package store provides the SQLite-backed curated store for expression
// datasets.
//
// Two tables hold the curated data:
//   - datasets: one row per curated dataset (metadata)
//   - expression: long-form values keyed by (dataset_id, gene_id, sample_id)
//
// Write contract: a dataset is committed in its entirety or not at all. The
// metadata row and every expression row are written in one transaction, and
// the skip-if-present decision is a single atomic insert-if-absent
// (ON CONFLICT DO NOTHING), never a check-then-insert pair. Re-running
// curation against a committed dataset is a no-op.
//
// Read contract: LoadExpression reconstructs the canonical matrix with
// deterministic gene and sample ordering, and fails with DatasetNotFoundError
// when the identifier has no committed rows.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: every expression row references its dataset
//
// The connection pool is capped at a single connection, which serializes all
// writers; concurrent analyses read through WAL snapshots without
// coordination.
package store
