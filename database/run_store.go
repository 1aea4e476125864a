// database/run_store.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gewnthar/datasetdoc/models"
)

// LogDocumentationRun inserts a run summary and returns its id.
func (s *Store) LogDocumentationRun(ctx context.Context, run *models.DocumentationRun) (int64, error) {
	var finishedAt sql.NullTime
	if run.FinishedAt != nil {
		finishedAt = sql.NullTime{Time: *run.FinishedAt, Valid: true}
	}
	var objectKey sql.NullString
	if run.PublishedObjectKey != "" {
		objectKey = sql.NullString{String: run.PublishedObjectKey, Valid: true}
	}

	query := `
		INSERT INTO documentation_runs (
			started_at, finished_at, sitemap_list_path, download_list_path,
			homepage_lines, skipped_homepages, matched_downloads, leftover_downloads,
			rows_written, report_path, published_object_key, interrupted
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := s.db.ExecContext(ctx, query,
		run.StartedAt, finishedAt, run.SitemapListPath, run.DownloadListPath,
		run.HomepageLines, run.SkippedHomepages, run.MatchedDownloads, run.LeftoverDownloads,
		run.RowsWritten, run.ReportPath, objectKey, run.Interrupted,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert documentation run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read documentation run id: %w", err)
	}
	s.log.Info().Int64("run_id", id).Int("rows", run.RowsWritten).Msg("logged documentation run")
	return id, nil
}

// LatestRunID returns the id of the most recent run, or 0 if there is none.
func (s *Store) LatestRunID(ctx context.Context) (int64, error) {
	var id sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(id) FROM documentation_runs`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to query latest documentation run: %w", err)
	}
	if !id.Valid {
		return 0, nil
	}
	return id.Int64, nil
}
