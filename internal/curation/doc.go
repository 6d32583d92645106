// Package curation orchestrates the pipeline that turns catalogue entries
// into curated datasets: fetch the series file, parse it into a canonical
// matrix, and upsert it into the store.
//
// Datasets are processed sequentially and failures are isolated: one bad
// download or malformed file marks that dataset failed in the run report and
// the run moves on. Re-running over an already-curated store is a cheap
// no-op per dataset, reported as skipped.
package curation
