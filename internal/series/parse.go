package series

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/kabilan108/cabid/internal/catalogue"
	"github.com/kabilan108/cabid/internal/dataset"
)

// ParseFile parses a raw artifact from disk. See Parse.
func ParseFile(path string, entry catalogue.Entry) (*dataset.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()
	return Parse(f, entry)
}

// Parse converts a raw series-matrix CSV into canonical form, validating it
// against the catalogue entry's declared sample count.
//
// The matrix is returned gene-major with genes in file column order and
// samples in file row order.
func Parse(r io.Reader, entry catalogue.Entry) (*dataset.Matrix, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, &MalformedError{
			Dataset: entry.ID,
			Reason:  ReasonBadHeader,
			Detail:  fmt.Sprintf("read header: %v", err),
		}
	}
	if len(header) < 3 || !strings.EqualFold(header[0], "samples") || !strings.EqualFold(header[1], "type") {
		return nil, &MalformedError{
			Dataset: entry.ID,
			Reason:  ReasonBadHeader,
			Detail:  "expected header starting with samples,type and at least one gene column",
		}
	}
	genes := dedupeGenes(header[2:])

	var (
		samples []string
		groups  []dataset.GroupLabel
		rows    [][]float64 // sample-major, transposed below
		seen    = make(map[string]bool)
	)

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedError{
				Dataset: entry.ID,
				Reason:  ReasonRaggedRow,
				Detail:  err.Error(),
			}
		}

		sample := strings.TrimSpace(record[0])
		if seen[sample] {
			return nil, &MalformedError{
				Dataset: entry.ID,
				Reason:  ReasonDuplicateSample,
				Detail:  fmt.Sprintf("sample %q appears more than once", sample),
			}
		}
		seen[sample] = true

		values := make([]float64, len(genes))
		for i, cell := range record[2:] {
			v, err := parseCell(cell)
			if err != nil {
				merr := err.(*MalformedError)
				merr.Dataset = entry.ID
				merr.Detail = fmt.Sprintf("sample %q, gene %q: %s", sample, genes[i], merr.Detail)
				return nil, merr
			}
			values[i] = v
		}

		samples = append(samples, sample)
		groups = append(groups, dataset.Classify(record[1]))
		rows = append(rows, values)
	}

	if len(samples) != entry.Samples {
		return nil, &MalformedError{
			Dataset: entry.ID,
			Reason:  ReasonSampleCountMismatch,
			Detail:  fmt.Sprintf("catalogue declares %d samples, artifact has %d", entry.Samples, len(samples)),
		}
	}

	// The catalogue selection criterion requires two comparison groups;
	// re-validate here rather than trusting the source.
	sizes := make(map[dataset.GroupLabel]int)
	for _, g := range groups {
		sizes[g]++
	}
	if len(sizes) < 2 {
		return nil, &MalformedError{
			Dataset: entry.ID,
			Reason:  ReasonInsufficientGroups,
			Detail:  fmt.Sprintf("found %d sample group(s), need 2", len(sizes)),
		}
	}

	m := &dataset.Matrix{
		Genes:   genes,
		Samples: samples,
		Groups:  groups,
		Values:  transpose(rows, len(genes)),
	}
	if err := m.Validate(); err != nil {
		return nil, &MalformedError{Dataset: entry.ID, Reason: ReasonBadHeader, Detail: err.Error()}
	}
	return m, nil
}

// parseCell converts one expression cell, trimming whitespace first.
// Empty and NaN cells are missing values; policy is to fail, not impute.
func parseCell(cell string) (float64, error) {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return 0, &MalformedError{Reason: ReasonMissingValue, Detail: "empty cell"}
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, &MalformedError{Reason: ReasonNonNumericValue, Detail: fmt.Sprintf("value %q", trimmed)}
	}
	if math.IsNaN(v) {
		return 0, &MalformedError{Reason: ReasonMissingValue, Detail: "NaN cell"}
	}
	return v, nil
}

// dedupeGenes makes repeated probe identifiers unique by appending a numeric
// suffix to second and later occurrences (platform annotations can map
// several probes to the same accession).
func dedupeGenes(genes []string) []string {
	counts := make(map[string]int, len(genes))
	out := make([]string, len(genes))
	for i, g := range genes {
		g = strings.TrimSpace(g)
		n := counts[g]
		counts[g] = n + 1
		if n == 0 {
			out[i] = g
		} else {
			out[i] = fmt.Sprintf("%s.%d", g, n)
		}
	}
	return out
}

// transpose converts sample-major parsed rows into the gene-major layout.
func transpose(rows [][]float64, genes int) [][]float64 {
	values := make([][]float64, genes)
	for g := range values {
		row := make([]float64, len(rows))
		for s := range rows {
			row[s] = rows[s][g]
		}
		values[g] = row
	}
	return values
}
