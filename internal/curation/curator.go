package curation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kabilan108/cabid/internal/catalogue"
	"github.com/kabilan108/cabid/internal/dataset"
	"github.com/kabilan108/cabid/internal/series"
)

// Fetcher retrieves a catalogue entry's series file and returns the local path.
type Fetcher interface {
	Fetch(ctx context.Context, entry catalogue.Entry) (string, error)
}

// Parser turns a fetched series file into a canonical expression matrix.
type Parser interface {
	ParseFile(path string, entry catalogue.Entry) (*dataset.Matrix, error)
}

// ParserFunc adapts a plain function to the Parser interface.
type ParserFunc func(path string, entry catalogue.Entry) (*dataset.Matrix, error)

func (f ParserFunc) ParseFile(path string, entry catalogue.Entry) (*dataset.Matrix, error) {
	return f(path, entry)
}

// Writer is the store capability the pipeline needs: one atomic upsert.
type Writer interface {
	UpsertExpression(ctx context.Context, meta dataset.Metadata, m *dataset.Matrix) (bool, error)
}

// Curator runs the fetch/parse/store pipeline over a catalogue.
type Curator struct {
	cat     *catalogue.Catalogue
	fetcher Fetcher
	parser  Parser
	store   Writer
	logger  *slog.Logger
	now     func() time.Time
	runID   func() string
}

// Option configures a Curator.
type Option func(*Curator)

// WithParser overrides the default series parser.
func WithParser(p Parser) Option {
	return func(c *Curator) { c.parser = p }
}

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Curator) { c.logger = l }
}

// WithClock overrides the time source. Used by tests for stable timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Curator) { c.now = now }
}

// WithRunID overrides run identifier generation. Used by tests for stable
// report output.
func WithRunID(gen func() string) Option {
	return func(c *Curator) { c.runID = gen }
}

// New builds a Curator over the given catalogue, fetcher, and store.
func New(cat *catalogue.Catalogue, fetcher Fetcher, store Writer, opts ...Option) *Curator {
	c := &Curator{
		cat:     cat,
		fetcher: fetcher,
		parser:  ParserFunc(series.ParseFile),
		store:   store,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		runID:   newRunID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newRunID returns a time-ordered UUID so run identifiers sort by start time.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back rather
		// than abort a curation run over an identifier.
		return uuid.New().String()
	}
	return id.String()
}

// CurateAll runs the pipeline over every catalogue entry in order.
//
// Each dataset either commits fully or not at all, and a failure in one
// dataset never stops the others. The report records every entry's outcome.
// Cancellation is honored between datasets; the partial report is returned
// alongside the context error.
func (c *Curator) CurateAll(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     c.runID(),
		StartedAt: c.now(),
	}
	c.logger.Info("curation run started", "run_id", report.RunID, "datasets", c.cat.Len())

	for _, entry := range c.cat.Entries() {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = c.now()
			return report, fmt.Errorf("curation run %s: %w", report.RunID, err)
		}
		report.Outcomes = append(report.Outcomes, c.curateOne(ctx, entry))
	}

	report.FinishedAt = c.now()
	curated, skipped, failed := report.Counts()
	c.logger.Info("curation run finished",
		"run_id", report.RunID,
		"curated", curated,
		"skipped", skipped,
		"failed", failed,
	)
	return report, nil
}

// CurateOne runs the pipeline for a single catalogue dataset.
// Fails with UnknownDatasetError if the identifier is not in the catalogue.
func (c *Curator) CurateOne(ctx context.Context, id string) (Outcome, error) {
	entry, err := c.cat.Lookup(id)
	if err != nil {
		return Outcome{}, err
	}
	return c.curateOne(ctx, entry), nil
}

func (c *Curator) curateOne(ctx context.Context, entry catalogue.Entry) (outcome Outcome) {
	outcome = Outcome{Dataset: entry.ID, CancerType: entry.CancerType}
	start := c.now()
	defer func() { outcome.ElapsedMS = c.now().Sub(start).Milliseconds() }()

	path, err := c.fetcher.Fetch(ctx, entry)
	if err != nil {
		c.logger.Warn("fetch failed", "dataset", entry.ID, "error", err)
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		return outcome
	}

	m, err := c.parser.ParseFile(path, entry)
	if err != nil {
		c.logger.Warn("parse failed", "dataset", entry.ID, "error", err)
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		return outcome
	}

	meta := dataset.Metadata{
		ID:          entry.ID,
		CancerType:  entry.CancerType,
		Platform:    entry.Platform,
		SampleCount: m.SampleCount(),
		GeneCount:   m.GeneCount(),
		CuratedAt:   c.now().UTC(),
	}
	inserted, err := c.store.UpsertExpression(ctx, meta, m)
	if err != nil {
		c.logger.Warn("store failed", "dataset", entry.ID, "error", err)
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		return outcome
	}

	if !inserted {
		c.logger.Info("dataset already curated", "dataset", entry.ID)
		outcome.Status = StatusSkipped
		return outcome
	}

	c.logger.Info("dataset curated",
		"dataset", entry.ID,
		"genes", m.GeneCount(),
		"samples", m.SampleCount(),
	)
	outcome.Status = StatusCurated
	return outcome
}
