package curation

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Status classifies the outcome of one dataset within a curation run.
type Status string

const (
	// StatusCurated means the dataset was fetched, parsed, and committed.
	StatusCurated Status = "curated"
	// StatusSkipped means the dataset was already present in the store.
	StatusSkipped Status = "skipped"
	// StatusFailed means some pipeline stage errored; Reason carries why.
	StatusFailed Status = "failed"
)

// Outcome records what happened to a single dataset.
type Outcome struct {
	Dataset    string `json:"dataset_id"`
	CancerType string `json:"cancer_type"`
	Status     Status `json:"status"`
	Reason     string `json:"reason,omitempty"`
	ElapsedMS  int64  `json:"elapsed_ms"`
}

// Report summarizes one curation run across the whole catalogue.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Counts tallies the outcomes by status.
func (r *Report) Counts() (curated, skipped, failed int) {
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusCurated:
			curated++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return curated, skipped, failed
}

// Failed reports whether any dataset in the run failed.
func (r *Report) Failed() bool {
	_, _, failed := r.Counts()
	return failed > 0
}

// Render writes a human-readable summary of the run.
func (r *Report) Render(w io.Writer) error {
	curated, skipped, failed := r.Counts()
	elapsed := r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond)
	if _, err := fmt.Fprintf(w, "curation run %s: %d curated, %d skipped, %d failed (%s)\n",
		r.RunID, curated, skipped, failed, elapsed); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, o := range r.Outcomes {
		if o.Reason != "" {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", o.Dataset, o.CancerType, o.Status, o.Reason)
		} else {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", o.Dataset, o.CancerType, o.Status)
		}
	}
	return tw.Flush()
}
