package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kabilan108/cabid/internal/catalogue"
	"github.com/kabilan108/cabid/internal/curation"
	"github.com/kabilan108/cabid/internal/geo"
	"github.com/kabilan108/cabid/internal/store"
)

// CurateOptions holds flags for the curate command.
type CurateOptions struct {
	*RootOptions
	Database  string
	Catalogue string
	CacheDir  string
	BaseURL   string
}

// NewCurateCommand creates the curate command.
func NewCurateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CurateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "curate",
		Short: "Fetch, parse, and store every catalogue dataset",
		Long: `Run the curation pipeline over the dataset catalogue.

Each dataset is downloaded (or served from the local cache), parsed into a
canonical expression matrix, and committed to the SQLite store atomically.
Datasets already present are skipped, so re-running is cheap and safe.

Example:
  cabid curate --db ./cabid.db
  cabid curate --db ./cabid.db --catalogue ./my-datasets.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Catalogue, "catalogue", "", "path to a catalogue YAML file (defaults to the built-in catalogue)")
	cmd.Flags().StringVar(&opts.CacheDir, "cache", "", "download cache directory (defaults to the user cache dir)")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", geo.DefaultBaseURL, "remote repository root")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runCurate(cmd *cobra.Command, opts *CurateOptions) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cat := catalogue.Default()
	if opts.Catalogue != "" {
		var err error
		cat, err = catalogue.Load(opts.Catalogue)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load catalogue", err)
		}
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to resolve cache dir", err)
		}
		cacheDir = filepath.Join(base, "cabid")
	}

	fetcher, err := geo.New(cacheDir,
		geo.WithBaseURL(opts.BaseURL),
		geo.WithLogger(slog.Default()),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up fetcher", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	curator := curation.New(cat, fetcher, st, curation.WithLogger(slog.Default()))
	report, err := curator.CurateAll(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "curation run aborted", err)
	}

	if err := out.Success(report, func(w io.Writer) error {
		return report.Render(w)
	}); err != nil {
		return err
	}

	if report.Failed() {
		_, _, failed := report.Counts()
		return NewExitError(ExitFailure, fmt.Sprintf("%d dataset(s) failed to curate", failed))
	}
	return nil
}
