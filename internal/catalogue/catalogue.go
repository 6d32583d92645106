package catalogue

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var defaultYAML []byte

// Entry names one supported dataset and the facts curation needs up front:
// where it came from (accession, platform), what it is (cancer type), and how
// many samples the raw matrix must contain.
type Entry struct {
	ID         string `yaml:"id" json:"id"`
	CancerType string `yaml:"cancer_type" json:"cancer_type"`
	Platform   string `yaml:"platform" json:"platform"`
	Samples    int    `yaml:"samples" json:"samples"`
}

// Catalogue is the fixed, validated set of supported datasets.
type Catalogue struct {
	entries []Entry
	byID    map[string]Entry
}

// catalogueFile is the top-level YAML document shape.
type catalogueFile struct {
	Datasets []Entry `yaml:"datasets" json:"datasets"`
}

// UnknownDatasetError reports an identifier outside the catalogue.
// This is a user/config error: it is surfaced immediately and never retried.
type UnknownDatasetError struct {
	ID string
}

func (e *UnknownDatasetError) Error() string {
	return fmt.Sprintf("dataset %q is not in the catalogue", e.ID)
}

// IsUnknownDataset returns true if the error is an UnknownDatasetError.
// Uses errors.As to handle wrapped errors.
func IsUnknownDataset(err error) bool {
	var ue *UnknownDatasetError
	return errors.As(err, &ue)
}

// New builds a catalogue from entries, validating them against the CUE schema
// and rejecting duplicate identifiers.
func New(entries []Entry) (*Catalogue, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalogue has no datasets")
	}
	if err := validateEntries(entries); err != nil {
		return nil, err
	}

	byID := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if _, dup := byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate catalogue entry %q", e.ID)
		}
		byID[e.ID] = e
	}

	return &Catalogue{entries: entries, byID: byID}, nil
}

// Load reads and validates a catalogue YAML file.
// Unknown fields are rejected (catches typos like "cancer_types:").
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}

	cat, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalogue %s: %w", path, err)
	}
	return cat, nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalogue
)

// Default returns the embedded catalogue of supported CuMiDa datasets.
// The embedded file is validated once; it is a build defect for it to fail.
func Default() *Catalogue {
	defaultOnce.Do(func() {
		cat, err := parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded catalogue invalid: %v", err))
		}
		defaultCat = cat
	})
	return defaultCat
}

// Entries returns the catalogue entries in file order.
func (c *Catalogue) Entries() []Entry {
	return c.entries
}

// Len returns the number of catalogue entries.
func (c *Catalogue) Len() int {
	return len(c.entries)
}

// Lookup resolves a dataset identifier to its catalogue entry.
// Returns UnknownDatasetError for identifiers outside the catalogue.
func (c *Catalogue) Lookup(id string) (Entry, error) {
	e, ok := c.byID[id]
	if !ok {
		return Entry{}, &UnknownDatasetError{ID: id}
	}
	return e, nil
}

// parse decodes a catalogue document with strict field validation and runs
// schema validation on the result.
func parse(data []byte) (*Catalogue, error) {
	var file catalogueFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return New(file.Datasets)
}
