// models/meta.go
package models

import "time"

// DocumentationRun summarizes one reconciliation run.
type DocumentationRun struct {
	ID                 int64      `db:"id" json:"id"`
	StartedAt          time.Time  `db:"started_at" json:"started_at"`
	FinishedAt         *time.Time `db:"finished_at" json:"finished_at,omitempty"`
	SitemapListPath    string     `db:"sitemap_list_path" json:"sitemap_list_path"`
	DownloadListPath   string     `db:"download_list_path" json:"download_list_path"`
	HomepageLines      int        `db:"homepage_lines" json:"homepage_lines"`
	SkippedHomepages   int        `db:"skipped_homepages" json:"skipped_homepages"`
	MatchedDownloads   int        `db:"matched_downloads" json:"matched_downloads"`
	LeftoverDownloads  int        `db:"leftover_downloads" json:"leftover_downloads"`
	RowsWritten        int        `db:"rows_written" json:"rows_written"`
	ReportPath         string     `db:"report_path" json:"report_path"`
	PublishedObjectKey string     `db:"published_object_key" json:"published_object_key,omitempty"`
	Interrupted        bool       `db:"interrupted" json:"interrupted"`
}
