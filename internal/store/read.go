package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kabilan108/cabid/internal/dataset"
)

// GetDataset returns the metadata record for a dataset identifier.
// Fails with DatasetNotFoundError if the identifier was never curated.
func (s *Store) GetDataset(ctx context.Context, id string) (dataset.Metadata, error) {
	var (
		meta      dataset.Metadata
		curatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT dataset_id, cancer_type, platform, sample_count, gene_count, curated_at
		FROM datasets
		WHERE dataset_id = ?
	`, id).Scan(&meta.ID, &meta.CancerType, &meta.Platform, &meta.SampleCount, &meta.GeneCount, &curatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dataset.Metadata{}, &DatasetNotFoundError{ID: id}
		}
		return dataset.Metadata{}, fmt.Errorf("get dataset %s: %w", id, err)
	}

	meta.CuratedAt, err = time.Parse(time.RFC3339, curatedAt)
	if err != nil {
		return dataset.Metadata{}, fmt.Errorf("get dataset %s: parse curated_at: %w", id, err)
	}
	return meta, nil
}

// ListDatasets returns metadata for all curated datasets, ordered by dataset
// identifier for deterministic listings.
//
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) ListDatasets(ctx context.Context) ([]dataset.Metadata, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT dataset_id, cancer_type, platform, sample_count, gene_count, curated_at
		FROM datasets
		ORDER BY dataset_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	metas := []dataset.Metadata{}
	for rows.Next() {
		var (
			meta      dataset.Metadata
			curatedAt string
		)
		if err := rows.Scan(&meta.ID, &meta.CancerType, &meta.Platform, &meta.SampleCount, &meta.GeneCount, &curatedAt); err != nil {
			return nil, fmt.Errorf("list datasets: scan: %w", err)
		}
		meta.CuratedAt, err = time.Parse(time.RFC3339, curatedAt)
		if err != nil {
			return nil, fmt.Errorf("list datasets: parse curated_at: %w", err)
		}
		metas = append(metas, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list datasets: iterate: %w", err)
	}

	return metas, nil
}

// LoadExpression reconstructs the canonical matrix for a dataset.
// Genes and samples come back in sorted identifier order, so repeated loads
// are deterministic regardless of insert order.
//
// Fails with DatasetNotFoundError if the identifier has no committed rows.
func (s *Store) LoadExpression(ctx context.Context, id string) (*dataset.Matrix, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT gene_id, sample_id, value, group_label
		FROM expression
		WHERE dataset_id = ?
		ORDER BY gene_id ASC, sample_id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("load expression %s: %w", id, err)
	}
	defer rows.Close()

	m := &dataset.Matrix{}
	var (
		currentGene string
		currentRow  []float64
		firstGene   = true
		col         int
	)

	flushRow := func() {
		if currentRow != nil {
			m.Genes = append(m.Genes, currentGene)
			m.Values = append(m.Values, currentRow)
		}
	}

	for rows.Next() {
		var (
			gene, sample, label string
			value               float64
		)
		if err := rows.Scan(&gene, &sample, &value, &label); err != nil {
			return nil, fmt.Errorf("load expression %s: scan: %w", id, err)
		}

		if gene != currentGene || currentRow == nil {
			flushRow()
			if currentRow != nil {
				firstGene = false
			}
			currentGene = gene
			currentRow = make([]float64, 0, len(m.Samples))
			col = 0
		}

		if firstGene {
			// The first gene's rows define the sample order and group labels.
			m.Samples = append(m.Samples, sample)
			m.Groups = append(m.Groups, dataset.GroupLabel(label))
		} else {
			// Later genes must agree with the established sample sequence;
			// the write path guarantees this, so a mismatch means corruption.
			if col >= len(m.Samples) || m.Samples[col] != sample {
				return nil, fmt.Errorf("load expression %s: gene %s has inconsistent sample %s", id, gene, sample)
			}
			if m.Groups[col] != dataset.GroupLabel(label) {
				return nil, fmt.Errorf("load expression %s: sample %s has conflicting group labels", id, sample)
			}
		}
		currentRow = append(currentRow, value)
		col++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load expression %s: iterate: %w", id, err)
	}
	flushRow()

	if len(m.Genes) == 0 {
		return nil, &DatasetNotFoundError{ID: id}
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("load expression %s: %w", id, err)
	}
	return m, nil
}
