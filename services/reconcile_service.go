// services/reconcile_service.go
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/gewnthar/datasetdoc/models"
)

// DefaultDelay is the pause after each homepage entry, to go easy on the
// catalog and archive services.
const DefaultDelay = 10 * time.Second

// HomepageStream is a one-shot sequence of homepage entries.
type HomepageStream interface {
	Next() (models.HomepageEntry, bool)
	Err() error
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ReconcileResult is the outcome of a Reconciler run.
type ReconcileResult struct {
	Results           models.ResultSet
	HomepageLines     int
	SkippedHomepages  int
	MatchedDownloads  int // identifiers consumed by the homepage pass
	LeftoverDownloads int // identifiers handled by the leftover pass
	Interrupted       bool
}

// Reconciler joins homepage entries, the download index and the catalog and
// archive lookups into dataset records. It runs strictly sequentially.
type Reconciler struct {
	metadata  *MetadataResolver
	snapshots *SnapshotResolver
	downloads *models.DownloadIndex
	delay     time.Duration
	sleep     SleepFunc
	log       zerolog.Logger
}

type ReconcilerOption func(*Reconciler)

// WithDelay sets the pause after each homepage entry. Zero disables it.
func WithDelay(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) { r.delay = d }
}

// WithSleep replaces the function used to wait between entries.
func WithSleep(fn SleepFunc) ReconcilerOption {
	return func(r *Reconciler) { r.sleep = fn }
}

func NewReconciler(metadata *MetadataResolver, snapshots *SnapshotResolver, downloads *models.DownloadIndex, log zerolog.Logger, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		metadata:  metadata,
		snapshots: snapshots,
		downloads: downloads,
		delay:     DefaultDelay,
		sleep:     sleepContext,
		log:       log,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.downloads == nil {
		r.downloads = models.NewDownloadIndex()
	}
	return r
}

// Run consumes the whole stream, then sweeps download entries that no
// homepage referenced. If ctx is canceled mid-run, the records gathered so
// far are returned along with ctx.Err() and the leftover sweep is skipped.
// A read error from the stream ends the homepage pass early; it is logged
// and the leftover sweep still runs.
func (r *Reconciler) Run(ctx context.Context, stream HomepageStream) (*ReconcileResult, error) {
	out := &ReconcileResult{Results: make(models.ResultSet)}
	consumed := make(map[string]bool)

	r.log.Info().Msg("getting dataset homepages out of the sitemaps file")
	for {
		if err := ctx.Err(); err != nil {
			return r.interrupted(out, err)
		}

		entry, ok := stream.Next()
		if !ok {
			break
		}
		out.HomepageLines++
		r.log.Debug().Str("homepage_url", entry.HomepageURL).Str("sitemap_url", entry.SitemapURL).
			Msg("looking at homepage from the sitemaps file")

		identifier, ok := entry.Identifier()
		if !ok {
			out.SkippedHomepages++
			r.log.Info().Str("homepage_url", entry.HomepageURL).
				Msg("no socrata id; assuming this is not a dataset homepage and skipping it")
			continue
		}

		rec := models.DatasetRecord{
			Identifier: identifier,
			Homepage:   entry.HomepageURL,
			Source:     models.SourceHomepage,
		}
		rec.ArchiveSnapshots = r.snapshots.Resolve(ctx, entry.HomepageURL)
		applyMetadata(&rec, r.metadata.Resolve(ctx, identifier))
		// A lookup cut short by cancellation fell back to defaults; drop it.
		if err := ctx.Err(); err != nil {
			return r.interrupted(out, err)
		}

		if r.applyDownloads(&rec) {
			if !consumed[identifier] {
				out.MatchedDownloads++
			}
			consumed[identifier] = true
		} else {
			r.log.Info().Str("socrata_id", identifier).
				Msg("could not find a download file with a matching socrata id")
		}

		out.Results.Add(rec)

		if r.delay > 0 {
			if err := r.sleep(ctx, r.delay); err != nil {
				return r.interrupted(out, err)
			}
		}
	}
	if err := stream.Err(); err != nil {
		r.log.Error().Err(err).Msg("homepage list could not be read to the end")
	}
	r.log.Info().Int("homepages", out.HomepageLines).Int("skipped", out.SkippedHomepages).
		Msg("finished looking at dataset homepages from the sitemaps file")

	for _, identifier := range r.downloads.Identifiers() {
		if consumed[identifier] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return r.interrupted(out, err)
		}
		rec := r.reconcileLeftover(ctx, identifier)
		if err := ctx.Err(); err != nil {
			return r.interrupted(out, err)
		}
		out.Results.Add(rec)
		out.LeftoverDownloads++
	}

	r.log.Info().Int("records", out.Results.Len()).Int("matched_downloads", out.MatchedDownloads).
		Int("leftover_downloads", out.LeftoverDownloads).Msg("reconciliation finished")
	return out, nil
}

// reconcileLeftover builds a record for a download that had no homepage
// entry, borrowing the homepage from the catalog when it has one.
func (r *Reconciler) reconcileLeftover(ctx context.Context, identifier string) models.DatasetRecord {
	r.log.Error().Str("socrata_id", identifier).
		Msg("download file not in dataset homepage file; processing what we can still get")

	rec := models.DatasetRecord{Identifier: identifier, Source: models.SourceLeftover}
	meta := r.metadata.Resolve(ctx, identifier)
	applyMetadata(&rec, meta)
	if meta.HasHomepage() {
		rec.Homepage = meta.Homepage
		rec.ArchiveSnapshots = r.snapshots.Resolve(ctx, meta.Homepage)
	}
	r.applyDownloads(&rec)
	return rec
}

// applyDownloads fills the snapshot fields from the download index. When the
// identifier was downloaded more than once, the last download listed wins.
func (r *Reconciler) applyDownloads(rec *models.DatasetRecord) bool {
	recs, ok := r.downloads.Lookup(rec.Identifier)
	if !ok {
		return false
	}
	for _, d := range recs {
		r.log.Debug().Str("socrata_id", rec.Identifier).Str("download_filename", d.Filename).
			Str("downloaded_ts", d.DownloadedAt).Msg("matched download file")
	}
	last, _ := r.downloads.Last(rec.Identifier)
	rec.SnapshotFilename = last.Filename
	rec.SnapshotDownloadedAt = last.DownloadedAt
	return true
}

func (r *Reconciler) interrupted(out *ReconcileResult, err error) (*ReconcileResult, error) {
	out.Interrupted = true
	r.log.Error().Err(err).Int("records", out.Results.Len()).
		Msg("reconciliation interrupted; returning partial results")
	return out, err
}

func applyMetadata(rec *models.DatasetRecord, meta models.CatalogMetadata) {
	rec.Name = meta.Name
	rec.Description = meta.Description
	rec.RawMetadata = meta.RawMetadata
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
