// scraper/homepage_list.go
package scraper

import (
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gewnthar/datasetdoc/models"
	"github.com/gewnthar/datasetdoc/utils"
)

// HomepageReader lazily yields one HomepageEntry per line of the homepage
// list ("sitemap_url,homepage_url"). It cannot be rewound.
type HomepageReader struct {
	lines *lineReader
	log   zerolog.Logger
}

func NewHomepageReader(reader io.Reader, log zerolog.Logger) *HomepageReader {
	return &HomepageReader{lines: newLineReader(reader), log: log}
}

// Next returns the next entry, or false once the input is exhausted. Entries
// whose homepage does not end in a dataset identifier are still returned,
// with no identifier; skipping them is the caller's decision. Lines over
// maxLineBytes are logged and skipped.
func (r *HomepageReader) Next() (models.HomepageEntry, bool) {
	for {
		line, tooLong, ok := r.lines.next()
		if !ok {
			return models.HomepageEntry{}, false
		}
		if tooLong {
			unparseableLinesTotal.WithLabelValues("homepages").Inc()
			r.log.Error().Int("line", r.lines.lineNo).Int("max_bytes", r.lines.max).
				Msg("homepage line too long, skipping it")
			continue
		}
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		return r.parseLine(line), true
	}
}

// Err reports the first read error, if any, once Next has returned false.
func (r *HomepageReader) Err() error {
	return r.lines.err
}

func (r *HomepageReader) parseLine(line string) models.HomepageEntry {
	sitemapURL, homepageURL, found := strings.Cut(line, ",")
	if !found {
		r.log.Error().Int("line", r.lines.lineNo).Str("line_text", line).
			Msg("homepage line has no comma; expected sitemap_url,homepage_url")
		unparseableLinesTotal.WithLabelValues("homepages").Inc()
		return models.NewHomepageEntry("", line, "")
	}
	homepageURL = strings.TrimSpace(homepageURL)

	identifier, ok := identifierFromHomepage(homepageURL)
	if !ok {
		r.log.Error().Int("line", r.lines.lineNo).Str("homepage_url", homepageURL).
			Msg("could not find a socrata id in homepage url")
		unparseableLinesTotal.WithLabelValues("homepages").Inc()
		return models.NewHomepageEntry(sitemapURL, homepageURL, "")
	}
	return models.NewHomepageEntry(sitemapURL, homepageURL, identifier)
}

// identifierFromHomepage takes the last path segment of the URL, e.g.
// https://data.cdc.gov/dataset/dhds_dataset/9vgf-r2z6 -> 9vgf-r2z6.
func identifierFromHomepage(homepageURL string) (string, bool) {
	u, err := url.Parse(homepageURL)
	if err != nil {
		return "", false
	}
	candidate := utils.NormalizeIdentifier(path.Base(u.Path))
	if !utils.IsValidIdentifier(candidate) {
		return "", false
	}
	return candidate, true
}
