package catalogue

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalogue(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalogue.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cat := Default()

	require.NotNil(t, cat)
	assert.Equal(t, 21, cat.Len())

	// Every default entry is on the supported platform.
	for _, e := range cat.Entries() {
		assert.Equal(t, "GPL570", e.Platform, e.ID)
		assert.GreaterOrEqual(t, e.Samples, 4, e.ID)
	}
}

func TestDefault_Lookup(t *testing.T) {
	cat := Default()

	e, err := cat.Lookup("GSE31189")
	require.NoError(t, err)
	assert.Equal(t, "bladder", e.CancerType)
	assert.Equal(t, 92, e.Samples)
}

func TestLookup_Unknown(t *testing.T) {
	cat := Default()

	_, err := cat.Lookup("GSE99999")
	require.Error(t, err)
	assert.True(t, IsUnknownDataset(err))
	assert.ErrorContains(t, err, "GSE99999")
}

func TestLoad(t *testing.T) {
	path := writeCatalogue(t, `
datasets:
  - id: GSE100
    cancer_type: breast
    platform: GPL570
    samples: 10
  - id: GSE200
    cancer_type: lung
    platform: GPL96
    samples: 8
`)

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())

	// File order is preserved.
	assert.Equal(t, "GSE100", cat.Entries()[0].ID)
	assert.Equal(t, "GSE200", cat.Entries()[1].ID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeCatalogue(t, `
datasets:
  - id: GSE100
    cancer_types: breast
    platform: GPL570
    samples: 10
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "cancer_types")
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
	}{
		{"bad accession", Entry{ID: "31189", CancerType: "bladder", Platform: "GPL570", Samples: 92}},
		{"bad platform", Entry{ID: "GSE31189", CancerType: "bladder", Platform: "Affy570", Samples: 92}},
		{"empty cancer type", Entry{ID: "GSE31189", CancerType: "", Platform: "GPL570", Samples: 92}},
		{"uppercase cancer type", Entry{ID: "GSE31189", CancerType: "Bladder", Platform: "GPL570", Samples: 92}},
		{"too few samples", Entry{ID: "GSE31189", CancerType: "bladder", Platform: "GPL570", Samples: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]Entry{tt.entry})
			assert.Error(t, err)
		})
	}
}

func TestNew_DuplicateID(t *testing.T) {
	entries := []Entry{
		{ID: "GSE100", CancerType: "breast", Platform: "GPL570", Samples: 10},
		{ID: "GSE100", CancerType: "lung", Platform: "GPL570", Samples: 12},
	}

	_, err := New(entries)
	require.Error(t, err)
	assert.ErrorContains(t, err, "duplicate")
}

func TestNew_Empty(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
