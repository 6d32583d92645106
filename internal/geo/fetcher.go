package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/kabilan108/cabid/internal/catalogue"
)

// DefaultBaseURL is the CuMiDa download root.
const DefaultBaseURL = "https://sbcb.inf.ufrgs.br/downloads/cumida"

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 500 * time.Millisecond
	defaultHTTPTimeout = 60 * time.Second
)

// FetchError reports that a dataset could not be retrieved.
// Carries the dataset identifier, how many attempts were made, and the
// underlying cause.
type FetchError struct {
	Dataset  string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: failed after %d attempt(s): %v", e.Dataset, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchFailure returns true if the error is a FetchError.
// Uses errors.As to handle wrapped errors.
func IsFetchFailure(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// permanentError marks a failure that retrying will not fix (e.g. HTTP 404).
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Fetcher downloads raw dataset artifacts into a local cache directory.
type Fetcher struct {
	baseURL     string
	cacheDir    string
	client      *http.Client
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL overrides the remote repository root (used by tests).
func WithBaseURL(url string) Option {
	return func(f *Fetcher) { f.baseURL = url }
}

// WithClient overrides the HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithMaxAttempts sets the retry ceiling (including the first attempt).
func WithMaxAttempts(n int) Option {
	return func(f *Fetcher) { f.maxAttempts = n }
}

// WithBackoff sets the initial retry delay; it doubles after each attempt.
func WithBackoff(d time.Duration) Option {
	return func(f *Fetcher) { f.backoff = d }
}

// WithLogger sets the logger for fetch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// New creates a Fetcher caching into cacheDir, creating it if needed.
func New(cacheDir string, opts ...Option) (*Fetcher, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	f := &Fetcher{
		baseURL:     DefaultBaseURL,
		cacheDir:    cacheDir,
		client:      &http.Client{Timeout: defaultHTTPTimeout},
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// CachePath returns the cache location for a catalogue entry.
func (f *Fetcher) CachePath(entry catalogue.Entry) string {
	name := fmt.Sprintf("%s_%s.csv", entry.CancerType, entry.ID)
	return filepath.Join(f.cacheDir, slug(name))
}

// Fetch returns the local path of the raw artifact for a catalogue entry,
// downloading it if no valid cached copy exists.
//
// Repeat calls for a cached entry perform no network I/O and have no side
// effects. Empty cache files are treated as absent and re-downloaded.
func (f *Fetcher) Fetch(ctx context.Context, entry catalogue.Entry) (string, error) {
	path := f.CachePath(entry)
	if isNonEmptyFile(path) {
		f.logger.Debug("cache hit", "dataset", entry.ID, "path", path)
		return path, nil
	}

	url := fmt.Sprintf("%s/%s_%s.csv", f.baseURL, entry.CancerType, entry.ID)

	var lastErr error
	delay := f.backoff
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", &FetchError{Dataset: entry.ID, Attempts: attempt - 1, Err: ctx.Err()}
			case <-timer.C:
			}
			delay *= 2
		}

		err := f.download(ctx, url, path)
		if err == nil {
			f.logger.Info("downloaded dataset", "dataset", entry.ID, "url", url, "attempt", attempt)
			return path, nil
		}

		var pe *permanentError
		if errors.As(err, &pe) {
			return "", &FetchError{Dataset: entry.ID, Attempts: attempt, Err: pe.err}
		}

		lastErr = err
		f.logger.Warn("fetch attempt failed", "dataset", entry.ID, "attempt", attempt, "error", err)
	}

	return "", &FetchError{Dataset: entry.ID, Attempts: f.maxAttempts, Err: lastErr}
}

// download performs one retrieval attempt, writing through a temp file so the
// cache path only ever holds complete artifacts.
func (f *Fetcher) download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &permanentError{err: fmt.Errorf("build request: %w", err)}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Proceed to write the body.
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Client errors will not resolve on retry.
		return &permanentError{err: fmt.Errorf("%s: %s", url, resp.Status)}
	default:
		return fmt.Errorf("%s: %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(f.cacheDir, ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // No-op after successful rename

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move into cache: %w", err)
	}
	return nil
}

// isNonEmptyFile checks if a file exists and is not empty.
func isNonEmptyFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}
