package cli

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kabilan108/cabid/internal/dge"
	"github.com/kabilan108/cabid/internal/store"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Database      string
	PThreshold    float64
	FCThreshold   float64
	Top           int
	EqualVariance bool
}

// analysisOutput is the JSON payload for a completed analysis.
type analysisOutput struct {
	Dataset     string       `json:"dataset_id"`
	Genes       int          `json:"genes"`
	Significant int          `json:"significant"`
	Results     []dge.Result `json:"results"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze <dataset-id>",
		Short: "Rank differentially expressed genes for a curated dataset",
		Long: `Compute per-gene differential expression between the normal and cancer
groups of a curated dataset.

Each gene gets a log2 fold change, a Welch t-test p-value, and a
Benjamini-Hochberg adjusted p-value. Results are ranked by adjusted p-value.

Example:
  cabid analyze GSE31189 --db ./cabid.db
  cabid analyze GSE31189 --db ./cabid.db --top 20 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().Float64Var(&opts.PThreshold, "p-threshold", 0.05, "adjusted p-value significance threshold")
	cmd.Flags().Float64Var(&opts.FCThreshold, "fc-threshold", 1.0, "absolute log2 fold change significance threshold")
	cmd.Flags().IntVar(&opts.Top, "top", 0, "limit output to the N best-ranked genes (0 = all)")
	cmd.Flags().BoolVar(&opts.EqualVariance, "equal-variance", false, "use the pooled-variance t-test instead of Welch")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *AnalyzeOptions, id string) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	dgeOpts := dge.DefaultOptions()
	dgeOpts.PThreshold = opts.PThreshold
	dgeOpts.FCThreshold = opts.FCThreshold
	dgeOpts.EqualVariance = opts.EqualVariance

	results, err := dge.Analyze(cmd.Context(), st, id, dgeOpts)
	if err != nil {
		switch {
		case store.IsDatasetNotFound(err):
			out.Error("DATASET_NOT_FOUND", err.Error())
			return WrapExitError(ExitCommandError, "dataset not curated", err)
		case dge.IsInsufficientGroups(err):
			out.Error("INSUFFICIENT_GROUPS", err.Error())
			return WrapExitError(ExitFailure, "analysis failed", err)
		default:
			return WrapExitError(ExitFailure, "analysis failed", err)
		}
	}

	significant := 0
	for _, r := range results {
		if r.Significant {
			significant++
		}
	}

	shown := results
	if opts.Top > 0 {
		shown = dge.TopGenes(results, opts.Top)
	}

	payload := analysisOutput{
		Dataset:     id,
		Genes:       len(results),
		Significant: significant,
		Results:     shown,
	}
	return out.Success(payload, func(w io.Writer) error {
		return renderResults(w, payload)
	})
}

func renderResults(w io.Writer, out analysisOutput) error {
	if _, err := fmt.Fprintf(w, "dataset %s: %d genes, %d significant\n",
		out.Dataset, out.Genes, out.Significant); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GENE\tLOG2FC\tP\tADJ_P\tSIG")
	for _, r := range out.Results {
		sig := ""
		if r.Significant {
			sig = "*"
		}
		fmt.Fprintf(tw, "%s\t%+.3f\t%s\t%s\t%s\n",
			r.GeneID, r.LogFC, formatP(r.PValue), formatP(r.AdjPValue), sig)
	}
	return tw.Flush()
}

// formatP renders p-values compactly: fixed-point for readable magnitudes,
// scientific below that, and an exact zero for the degenerate case.
func formatP(p float64) string {
	switch {
	case p == 0:
		return "0"
	case p < 1e-4:
		return fmt.Sprintf("%.2e", p)
	default:
		return fmt.Sprintf("%.4f", p)
	}
}
