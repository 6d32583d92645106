package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabilan108/cabid/internal/catalogue"
)

const testCSV = "samples,type,G1\nS1,normal,1.5\nS2,cancer,2.5\n"

func testEntry() catalogue.Entry {
	return catalogue.Entry{ID: "GSE100", CancerType: "bladder", Platform: "GPL570", Samples: 2}
}

// countingServer serves testCSV after failing the first `failures` requests
// with the given status code.
func countingServer(t *testing.T, failures int64, status int) (*httptest.Server, *int64) {
	t.Helper()
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&hits, 1)
		if n <= failures {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte(testCSV))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestFetcher(t *testing.T, srv *httptest.Server) *Fetcher {
	t.Helper()
	f, err := New(t.TempDir(),
		WithBaseURL(srv.URL),
		WithBackoff(time.Millisecond),
	)
	require.NoError(t, err)
	return f
}

func TestFetch_Download(t *testing.T) {
	srv, hits := countingServer(t, 0, 0)
	f := newTestFetcher(t, srv)

	path, err := f.Fetch(context.Background(), testEntry())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testCSV, string(data))
	assert.EqualValues(t, 1, *hits)
}

func TestFetch_CacheHit(t *testing.T) {
	srv, hits := countingServer(t, 0, 0)
	f := newTestFetcher(t, srv)
	entry := testEntry()

	// Seed the cache, then fetch again: no further network access.
	_, err := f.Fetch(context.Background(), entry)
	require.NoError(t, err)

	path, err := f.Fetch(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, f.CachePath(entry), path)
	assert.EqualValues(t, 1, *hits)
}

func TestFetch_EmptyCacheFileRedownloads(t *testing.T) {
	srv, hits := countingServer(t, 0, 0)
	f := newTestFetcher(t, srv)
	entry := testEntry()

	require.NoError(t, os.WriteFile(f.CachePath(entry), nil, 0o644))

	path, err := f.Fetch(context.Background(), entry)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testCSV, string(data))
	assert.EqualValues(t, 1, *hits)
}

func TestFetch_RetriesTransientFailure(t *testing.T) {
	srv, hits := countingServer(t, 2, http.StatusServiceUnavailable)
	f := newTestFetcher(t, srv)

	path, err := f.Fetch(context.Background(), testEntry())
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.EqualValues(t, 3, *hits)
}

func TestFetch_ExhaustsRetries(t *testing.T) {
	srv, hits := countingServer(t, 100, http.StatusInternalServerError)
	f := newTestFetcher(t, srv)

	_, err := f.Fetch(context.Background(), testEntry())
	require.Error(t, err)
	assert.True(t, IsFetchFailure(err))

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "GSE100", fe.Dataset)
	assert.Equal(t, 3, fe.Attempts)
	assert.EqualValues(t, 3, *hits)

	// Nothing was cached.
	assert.NoFileExists(t, f.CachePath(testEntry()))
}

func TestFetch_NotFoundIsPermanent(t *testing.T) {
	srv, hits := countingServer(t, 100, http.StatusNotFound)
	f := newTestFetcher(t, srv)

	_, err := f.Fetch(context.Background(), testEntry())
	require.Error(t, err)
	assert.True(t, IsFetchFailure(err))
	assert.ErrorContains(t, err, "404")

	// No retries for client errors.
	assert.EqualValues(t, 1, *hits)
}

func TestFetch_ContextCancelled(t *testing.T) {
	srv, _ := countingServer(t, 100, http.StatusInternalServerError)
	f := newTestFetcher(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, testEntry())
	require.Error(t, err)
	assert.True(t, IsFetchFailure(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCachePath_Slug(t *testing.T) {
	f, err := New(t.TempDir())
	require.NoError(t, err)

	entry := catalogue.Entry{ID: "GSE200", CancerType: "head neck", Platform: "GPL570", Samples: 10}
	assert.Equal(t, "head-neck_gse200.csv", filepath.Base(f.CachePath(entry)))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "breast_gse7904.csv", slug("breast_GSE7904.csv"))
	assert.Equal(t, "a-b.csv", slug("  A   b.csv"))
	assert.Equal(t, "cafe.csv", slug("café.csv"))
	assert.Equal(t, "ab.csv", slug("a/b.csv"))
}
