package cli

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kabilan108/cabid/internal/dataset"
	"github.com/kabilan108/cabid/internal/store"
)

// DatasetsOptions holds flags for the datasets command.
type DatasetsOptions struct {
	*RootOptions
	Database string
}

// NewDatasetsCommand creates the datasets command.
func NewDatasetsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DatasetsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List curated datasets",
		Long: `List every dataset in the curated store with its cancer type, platform,
and matrix dimensions.

Example:
  cabid datasets --db ./cabid.db
  cabid datasets --db ./cabid.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDatasets(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runDatasets(cmd *cobra.Command, opts *DatasetsOptions) error {
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

	metas, err := st.ListDatasets(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list datasets", err)
	}

	return out.Success(metas, func(w io.Writer) error {
		return renderDatasets(w, metas)
	})
}

func renderDatasets(w io.Writer, metas []dataset.Metadata) error {
	if len(metas) == 0 {
		_, err := fmt.Fprintln(w, "no curated datasets")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATASET\tCANCER\tPLATFORM\tSAMPLES\tGENES\tCURATED")
	for _, m := range metas {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			m.ID, m.CancerType, m.Platform, m.SampleCount, m.GeneCount,
			m.CuratedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}
