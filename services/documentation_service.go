// services/documentation_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/gewnthar/datasetdoc/models"
	"github.com/gewnthar/datasetdoc/scraper"
)

// RecordStore persists a finished run and its report rows.
type RecordStore interface {
	LogDocumentationRun(ctx context.Context, run *models.DocumentationRun) (int64, error)
	SaveDatasetRows(ctx context.Context, runID int64, rows []models.ReportRow) error
}

// ReportPublisher copies a written report somewhere durable and returns
// where it went.
type ReportPublisher interface {
	Publish(ctx context.Context, reportPath string) (string, error)
}

// DocumentationInput names the files a run reads and writes.
type DocumentationInput struct {
	SitemapListPath  string
	DownloadListPath string
	ReportPath       string
}

// DocumentationService runs one end-to-end documentation pass: read both
// input lists, reconcile, write the report, then optionally persist and
// publish it.
type DocumentationService struct {
	Catalog   CatalogLookup
	Archive   ArchiveLookup
	Store     RecordStore     // optional
	Publisher ReportPublisher // optional
	Delay     time.Duration
	Sleep     SleepFunc // optional, defaults to a context-aware timer
	Log       zerolog.Logger
}

// Run returns the run summary even when it also returns an error. When ctx is
// canceled the partial report is still written and ctx.Err() is returned.
func (s *DocumentationService) Run(ctx context.Context, in DocumentationInput) (*models.DocumentationRun, error) {
	run := &models.DocumentationRun{
		StartedAt:        time.Now().UTC(),
		SitemapListPath:  in.SitemapListPath,
		DownloadListPath: in.DownloadListPath,
		ReportPath:       in.ReportPath,
	}
	s.Log.Info().Str("download_list", in.DownloadListPath).Msg("documenting datasets downloaded in download list")
	s.Log.Info().Str("sitemap_list", in.SitemapListPath).Msg("dataset homepages are in sitemap list")

	index, err := s.buildIndex(in.DownloadListPath)
	if err != nil {
		return run, err
	}

	homepages, err := os.Open(in.SitemapListPath)
	if err != nil {
		return run, fmt.Errorf("failed to open homepage list %s: %w", in.SitemapListPath, err)
	}
	defer homepages.Close()

	opts := []ReconcilerOption{WithDelay(s.Delay)}
	if s.Sleep != nil {
		opts = append(opts, WithSleep(s.Sleep))
	}
	reconciler := NewReconciler(
		NewMetadataResolver(s.Catalog, s.Log),
		NewSnapshotResolver(s.Archive, s.Log),
		index,
		s.Log,
		opts...,
	)
	result, runErr := reconciler.Run(ctx, scraper.NewHomepageReader(homepages, s.Log))
	run.HomepageLines = result.HomepageLines
	run.SkippedHomepages = result.SkippedHomepages
	run.MatchedDownloads = result.MatchedDownloads
	run.LeftoverDownloads = result.LeftoverDownloads
	run.Interrupted = result.Interrupted

	rows := AssembleReport(result.Results)
	if err := writeReportFile(in.ReportPath, rows); err != nil {
		return run, errors.Join(runErr, err)
	}
	run.RowsWritten = len(rows)
	finished := time.Now().UTC()
	run.FinishedAt = &finished
	s.Log.Info().Str("report", in.ReportPath).Int("rows", len(rows)).Bool("interrupted", run.Interrupted).
		Msg("wrote dataset documentation")

	// Persisting and publishing use a fresh context so an interrupted run
	// still records what it produced.
	afterCtx := context.WithoutCancel(ctx)
	var errs []error
	if runErr != nil {
		errs = append(errs, runErr)
	}
	if s.Publisher != nil {
		key, err := s.Publisher.Publish(afterCtx, in.ReportPath)
		if err != nil {
			s.Log.Error().Err(err).Msg("failed to publish report")
			errs = append(errs, fmt.Errorf("failed to publish report: %w", err))
		} else {
			run.PublishedObjectKey = key
		}
	}
	if s.Store != nil {
		if err := s.persist(afterCtx, run, rows); err != nil {
			s.Log.Error().Err(err).Msg("failed to persist documentation run")
			errs = append(errs, err)
		}
	}
	return run, errors.Join(errs...)
}

func (s *DocumentationService) buildIndex(path string) (*models.DownloadIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open download list %s: %w", path, err)
	}
	defer f.Close()
	return scraper.BuildDownloadIndex(f, s.Log)
}

func (s *DocumentationService) persist(ctx context.Context, run *models.DocumentationRun, rows []models.ReportRow) error {
	id, err := s.Store.LogDocumentationRun(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to log documentation run: %w", err)
	}
	run.ID = id
	if err := s.Store.SaveDatasetRows(ctx, id, rows); err != nil {
		return fmt.Errorf("failed to save dataset rows for run %d: %w", id, err)
	}
	return nil
}

func writeReportFile(path string, rows []models.ReportRow) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for report %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report %s: %w", path, cerr)
		}
	}()
	return WriteReport(f, ReportPreamble(), rows)
}
