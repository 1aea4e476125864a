// services/archive_service.go
package services

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

// ArchiveLookup queries a web archive for snapshots of a page.
type ArchiveLookup interface {
	LookupSnapshots(ctx context.Context, homepageURL string) (status int, body string, err error)
}

// SnapshotResolver returns the archive's snapshot list for a homepage, or ""
// when the archive cannot provide one.
type SnapshotResolver struct {
	archive ArchiveLookup
	log     zerolog.Logger
}

func NewSnapshotResolver(archive ArchiveLookup, log zerolog.Logger) *SnapshotResolver {
	return &SnapshotResolver{archive: archive, log: log}
}

// Resolve passes the snapshot list through untouched.
func (r *SnapshotResolver) Resolve(ctx context.Context, homepageURL string) string {
	if homepageURL == "" {
		return ""
	}

	status, body, err := r.archive.LookupSnapshots(ctx, homepageURL)
	if err != nil {
		r.log.Error().Err(err).Str("homepage_url", homepageURL).Msg("internet archive snapshot lookup failed")
		return ""
	}
	if status != http.StatusOK {
		r.log.Error().Int("status", status).Str("homepage_url", homepageURL).
			Msg("could not look up internet archive snapshots")
		return ""
	}
	return body
}
