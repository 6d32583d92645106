// Package geo retrieves raw expression matrices from the remote dataset
// repository (CuMiDa, hosted by SBCB) with a local file cache.
//
// Fetch is idempotent: a non-empty cached artifact is returned without any
// network access, so re-running curation costs nothing for datasets already
// downloaded. Downloads are written to a temp file and renamed into place, so
// a torn download never poisons the cache.
//
// Transient failures (network errors, 5xx responses) are retried a bounded
// number of times with exponential backoff; client errors (4xx) are permanent
// and fail immediately. Either way the caller receives a FetchError carrying
// the dataset identifier and the underlying cause - the orchestrator records
// it and moves on to the next dataset.
package geo
