// services/fakes_test.go
package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gewnthar/datasetdoc/models"
)

// fakeCatalog answers lookups from a fixed table and records every call.
type fakeCatalog struct {
	results map[string]models.CatalogLookupResult
	calls   []string
}

func (f *fakeCatalog) LookupDataset(_ context.Context, id string) models.CatalogLookupResult {
	f.calls = append(f.calls, id)
	return f.results[id]
}

type archiveReply struct {
	status int
	body   string
	err    error
}

type fakeArchive struct {
	replies map[string]archiveReply
	calls   []string
}

func (f *fakeArchive) LookupSnapshots(_ context.Context, url string) (int, string, error) {
	f.calls = append(f.calls, url)
	r, ok := f.replies[url]
	if !ok {
		return http.StatusNotFound, "", nil
	}
	return r.status, r.body, r.err
}

var errArchiveDown = errors.New("connection refused")

// sliceStream replays entries as a HomepageStream.
type sliceStream struct {
	entries []models.HomepageEntry
	pos     int
	err     error
}

func (s *sliceStream) Next() (models.HomepageEntry, bool) {
	if s.pos >= len(s.entries) {
		return models.HomepageEntry{}, false
	}
	e := s.entries[s.pos]
	s.pos++
	return e, true
}

func (s *sliceStream) Err() error { return s.err }

func homepage(id string) models.HomepageEntry {
	url := "https://data.cdc.gov/d/" + id
	return models.NewHomepageEntry("https://data.cdc.gov/sitemap.xml", url, id)
}

func nonDataset(url string) models.HomepageEntry {
	return models.NewHomepageEntry("https://data.cdc.gov/sitemap.xml", url, "")
}

func named(name string) models.CatalogLookupResult {
	return models.CatalogLookupResult{Payload: models.CatalogPayload{"name": name}}
}

func noSleep(context.Context, time.Duration) error { return nil }
