// scraper/download_list.go
package scraper

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gewnthar/datasetdoc/models"
	"github.com/gewnthar/datasetdoc/utils"
)

// Download filenames look like <socrata id>_<unix epoch seconds.fraction>_<original name>.
var downloadFilenameRegex = regexp.MustCompile(`^([a-zA-Z0-9]+-[a-zA-Z0-9]+)_(\d+\.\d+)_`)

const downloadedAtLayout = "2006-01-02 15:04:05 UTC"

// ParseDownloadFilename extracts the identifier and download time from one
// line of the download list. ok is false when the line does not carry the
// expected prefix.
func ParseDownloadFilename(line string) (rec models.DownloadRecord, ok bool) {
	matches := downloadFilenameRegex.FindStringSubmatch(line)
	if len(matches) < 3 {
		return models.DownloadRecord{}, false
	}

	// Whole seconds only; the fraction is dropped, not rounded.
	secs, err := strconv.ParseInt(strings.SplitN(matches[2], ".", 2)[0], 10, 64)
	if err != nil {
		return models.DownloadRecord{}, false
	}

	return models.DownloadRecord{
		Identifier:   utils.NormalizeIdentifier(matches[1]),
		Filename:     line,
		DownloadedAt: time.Unix(secs, 0).UTC().Format(downloadedAtLayout),
	}, true
}

// BuildDownloadIndex reads the download list and groups its lines by
// identifier. Bad lines, including lines over maxLineBytes, are logged and
// skipped; only a failing reader aborts the build.
func BuildDownloadIndex(reader io.Reader, log zerolog.Logger) (*models.DownloadIndex, error) {
	index := models.NewDownloadIndex()

	lines := newLineReader(reader)
	for {
		line, tooLong, ok := lines.next()
		if !ok {
			break
		}
		if tooLong {
			unparseableLinesTotal.WithLabelValues("downloads").Inc()
			log.Error().Int("line", lines.lineNo).Int("max_bytes", lines.max).
				Msg("download list line too long, skipping it")
			continue
		}
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}

		rec, ok := ParseDownloadFilename(line)
		if !ok {
			unparseableLinesTotal.WithLabelValues("downloads").Inc()
			log.Error().Int("line", lines.lineNo).Str("filename", line).
				Msg("unparseable filename: cannot map downloaded file to a socrata id, skipping it")
			continue
		}

		if index.Add(rec) {
			log.Info().Str("socrata_id", rec.Identifier).
				Msg("socrata id appears more than once in the download list")
		}
	}
	if lines.err != nil {
		return nil, fmt.Errorf("failed to read download list at line %d: %w", lines.lineNo+1, lines.err)
	}

	log.Info().Int("identifiers", index.Len()).Msg("built download index")
	return index, nil
}
