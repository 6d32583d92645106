package store

import (
	"context"
	"fmt"
	"time"

	"github.com/kabilan108/cabid/internal/dataset"
)

// UpsertDataset inserts a dataset metadata row if absent.
// Uses ON CONFLICT(dataset_id) DO NOTHING so the skip decision is a single
// atomic statement - concurrent curation runs cannot race a check-then-insert.
// Returns whether a new row was inserted.
func (s *Store) UpsertDataset(ctx context.Context, meta dataset.Metadata) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO datasets
		(dataset_id, cancer_type, platform, sample_count, gene_count, curated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(dataset_id) DO NOTHING
	`,
		meta.ID,
		meta.CancerType,
		meta.Platform,
		meta.SampleCount,
		meta.GeneCount,
		meta.CuratedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("upsert dataset %s: %w", meta.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upsert dataset %s: rows affected: %w", meta.ID, err)
	}
	return n > 0, nil
}

// UpsertExpression writes a dataset's metadata row and all of its expression
// rows in one transaction: the dataset becomes visible in its entirety or not
// at all. If the dataset is already fully present the call is a committed
// no-op and returns inserted=false, which makes orchestrator re-runs safe.
func (s *Store) UpsertExpression(ctx context.Context, meta dataset.Metadata, m *dataset.Matrix) (inserted bool, err error) {
	if err := m.Validate(); err != nil {
		return false, fmt.Errorf("upsert expression %s: %w", meta.ID, err)
	}
	if m.GeneCount() != meta.GeneCount || m.SampleCount() != meta.SampleCount {
		return false, fmt.Errorf("upsert expression %s: metadata declares %dx%d, matrix is %dx%d",
			meta.ID, meta.GeneCount, meta.SampleCount, m.GeneCount(), m.SampleCount())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("upsert expression %s: begin tx: %w", meta.ID, err)
	}
	defer tx.Rollback() // No-op if committed

	// Claim the dataset atomically via the primary key.
	res, err := tx.ExecContext(ctx, `
		INSERT INTO datasets
		(dataset_id, cancer_type, platform, sample_count, gene_count, curated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(dataset_id) DO NOTHING
	`,
		meta.ID,
		meta.CancerType,
		meta.Platform,
		meta.SampleCount,
		meta.GeneCount,
		meta.CuratedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("upsert expression %s: insert dataset: %w", meta.ID, err)
	}

	claimed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upsert expression %s: rows affected: %w", meta.ID, err)
	}

	if claimed == 0 {
		// Metadata row already exists. If its expression rows are committed
		// too, this dataset is fully present and the upsert is a no-op.
		var count int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM expression WHERE dataset_id = ?`, meta.ID,
		).Scan(&count)
		if err != nil {
			return false, fmt.Errorf("upsert expression %s: count existing: %w", meta.ID, err)
		}
		if count > 0 {
			if err := tx.Commit(); err != nil {
				return false, fmt.Errorf("upsert expression %s: commit (existing): %w", meta.ID, err)
			}
			return false, nil
		}
		// Metadata without expression rows (UpsertDataset alone): fill in the
		// expression rows below.
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO expression
		(dataset_id, gene_id, sample_id, value, group_label)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return false, fmt.Errorf("upsert expression %s: prepare: %w", meta.ID, err)
	}
	defer stmt.Close()

	for i, gene := range m.Genes {
		for j, sample := range m.Samples {
			_, err := stmt.ExecContext(ctx, meta.ID, gene, sample, m.Values[i][j], string(m.Groups[j]))
			if err != nil {
				return false, fmt.Errorf("upsert expression %s: gene %s sample %s: %w", meta.ID, gene, sample, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("upsert expression %s: commit: %w", meta.ID, err)
	}

	return true, nil
}
