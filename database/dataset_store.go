// database/dataset_store.go
package database

import (
	"context"
	"fmt"

	"github.com/gewnthar/datasetdoc/models"
)

// EnsureSchema creates the tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	// The driver runs one statement per Exec unless multiStatements is set.
	for _, stmt := range splitStatements(schema) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// SaveDatasetRows stores the rows of a run in report order, in one
// transaction. Re-saving a run overwrites its rows.
func (s *Store) SaveDatasetRows(ctx context.Context, runID int64, rows []models.ReportRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dataset_documentation (
			run_id, row_no, name, socrata_id, download_filename, downloaded_ts,
			homepage, description, internet_archive_snapshots, socrata_metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			socrata_id = VALUES(socrata_id),
			download_filename = VALUES(download_filename),
			downloaded_ts = VALUES(downloaded_ts),
			homepage = VALUES(homepage),
			description = VALUES(description),
			internet_archive_snapshots = VALUES(internet_archive_snapshots),
			socrata_metadata = VALUES(socrata_metadata)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare dataset row insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			runID, i, r.Name, r.Identifier, r.SnapshotFilename, r.SnapshotDownloadedAt,
			r.Homepage, r.Description, r.ArchiveSnapshots, r.RawMetadata,
		); err != nil {
			return fmt.Errorf("failed to save dataset row %d (%s): %w", i, r.Identifier, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset rows: %w", err)
	}
	s.log.Info().Int64("run_id", runID).Int("rows", len(rows)).Msg("saved dataset rows")
	return nil
}

// ListDatasetRows returns the rows of a run in report order, optionally
// limited to one dataset name.
func (s *Store) ListDatasetRows(ctx context.Context, runID int64, name string) ([]models.ReportRow, error) {
	query := `
		SELECT name, socrata_id, download_filename, downloaded_ts, homepage,
		       description, internet_archive_snapshots, socrata_metadata
		FROM dataset_documentation
		WHERE run_id = ?`
	args := []any{runID}
	if name != "" {
		query += ` AND name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY row_no`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset rows: %w", err)
	}
	defer rows.Close()

	var out []models.ReportRow
	for rows.Next() {
		var r models.ReportRow
		if err := rows.Scan(
			&r.Name, &r.Identifier, &r.SnapshotFilename, &r.SnapshotDownloadedAt, &r.Homepage,
			&r.Description, &r.ArchiveSnapshots, &r.RawMetadata,
		); err != nil {
			return nil, fmt.Errorf("failed to scan dataset row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dataset rows: %w", err)
	}
	return out, nil
}
