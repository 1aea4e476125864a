// services/documentation_service_test.go
package services

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/datasetdoc/models"
)

type fakeStore struct {
	run     *models.DocumentationRun
	runID   int64
	rows    []models.ReportRow
	saveErr error
}

func (f *fakeStore) LogDocumentationRun(_ context.Context, run *models.DocumentationRun) (int64, error) {
	f.run = run
	return f.runID, nil
}

func (f *fakeStore) SaveDatasetRows(_ context.Context, runID int64, rows []models.ReportRow) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.rows = rows
	return nil
}

type fakePublisher struct {
	published string
}

func (f *fakePublisher) Publish(_ context.Context, path string) (string, error) {
	f.published = path
	return "reports/" + filepath.Base(path), nil
}

func writeInputs(t *testing.T) (dir string, in DocumentationInput) {
	t.Helper()
	dir = t.TempDir()
	sitemap := filepath.Join(dir, "homepages.csv")
	downloads := filepath.Join(dir, "downloads.csv")
	require.NoError(t, os.WriteFile(sitemap, []byte(strings.Join([]string{
		"https://data.cdc.gov/sitemap.xml,https://data.cdc.gov/d/yt7u-eiyg",
		"https://data.cdc.gov/sitemap.xml,https://data.cdc.gov/browse",
		"https://data.cdc.gov/sitemap.xml,https://data.cdc.gov/d/abcd-1234",
	}, "\n")+"\n"), 0o644))
	require.NoError(t, os.WriteFile(downloads, []byte(strings.Join([]string{
		"yt7u-eiyg_1736710755.963349_NCHS_Births.csv.gz",
		"garbage",
		"qqqq-7777_1736710800.1_Leftover.csv",
	}, "\n")+"\n"), 0o644))
	return dir, DocumentationInput{
		SitemapListPath:  sitemap,
		DownloadListPath: downloads,
		ReportPath:       filepath.Join(dir, "out", "dataset_documentation.csv"),
	}
}

func newDocService(store RecordStore, pub ReportPublisher) *DocumentationService {
	return &DocumentationService{
		Catalog: &fakeCatalog{results: map[string]models.CatalogLookupResult{
			"yt7u-eiyg": named("NCHS Births"),
			"abcd-1234": named("Asthma"),
		}},
		Archive: &fakeArchive{replies: map[string]archiveReply{
			"https://data.cdc.gov/d/yt7u-eiyg": {status: http.StatusOK, body: "snapshots"},
		}},
		Store:     store,
		Publisher: pub,
		Delay:     time.Second,
		Sleep:     noSleep,
		Log:       zerolog.Nop(),
	}
}

func TestDocumentationServiceRun(t *testing.T) {
	_, in := writeInputs(t)
	store := &fakeStore{runID: 42}
	pub := &fakePublisher{}

	run, err := newDocService(store, pub).Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 3, run.HomepageLines)
	assert.Equal(t, 1, run.SkippedHomepages)
	assert.Equal(t, 1, run.MatchedDownloads)
	assert.Equal(t, 1, run.LeftoverDownloads)
	assert.Equal(t, 3, run.RowsWritten)
	assert.Equal(t, int64(42), run.ID)
	assert.NotNil(t, run.FinishedAt)
	assert.Equal(t, "reports/dataset_documentation.csv", run.PublishedObjectKey)
	assert.Equal(t, in.ReportPath, pub.published)

	require.Len(t, store.rows, 3)
	assert.Equal(t, "Asthma", store.rows[0].Name)
	assert.Equal(t, "NCHS Births", store.rows[1].Name)
	assert.Equal(t, "snapshots", store.rows[1].ArchiveSnapshots)
	assert.Equal(t, "2025-01-12 19:39:15 UTC", store.rows[1].SnapshotDownloadedAt)
	assert.Equal(t, models.DefaultDatasetName, store.rows[2].Name)
	assert.Equal(t, "qqqq-7777", store.rows[2].Identifier)

	data, err := os.ReadFile(in.ReportPath)
	require.NoError(t, err)
	report := string(data)
	assert.True(t, strings.HasPrefix(report, "This is supplementary information"))
	assert.Contains(t, report, "dataset name,socrata id,download filename,downloaded ts")
	assert.Less(t, strings.Index(report, "Asthma"), strings.Index(report, "NCHS Births"))
}

func TestDocumentationServiceWithoutOptionalSinks(t *testing.T) {
	_, in := writeInputs(t)

	run, err := newDocService(nil, nil).Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 3, run.RowsWritten)
	assert.Empty(t, run.PublishedObjectKey)
	assert.FileExists(t, in.ReportPath)
}

func TestDocumentationServiceInterruptedFlushesPartialReport(t *testing.T) {
	_, in := writeInputs(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := newDocService(&fakeStore{runID: 1}, nil)
	svc.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	run, err := svc.Run(ctx, in)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, run.Interrupted)
	assert.Equal(t, 1, run.RowsWritten)

	data, readErr := os.ReadFile(in.ReportPath)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "yt7u-eiyg")
	assert.NotContains(t, string(data), "qqqq-7777")
}

func TestDocumentationServiceStoreFailure(t *testing.T) {
	_, in := writeInputs(t)
	store := &fakeStore{runID: 7, saveErr: errors.New("deadlock")}

	run, err := newDocService(store, nil).Run(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock")
	assert.FileExists(t, in.ReportPath, "report is written before persistence")
	assert.Equal(t, 3, run.RowsWritten)
}

func TestDocumentationServiceMissingInput(t *testing.T) {
	dir, in := writeInputs(t)
	in.DownloadListPath = filepath.Join(dir, "nope.csv")

	_, err := newDocService(nil, nil).Run(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open download list")
}
