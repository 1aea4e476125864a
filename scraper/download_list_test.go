// scraper/download_list_test.go
package scraper

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDownloadFilename(t *testing.T) {
	rec, ok := ParseDownloadFilename("yt7u-eiyg_1736710755.963349_NCHS_Births.csv.gz")
	require.True(t, ok)
	assert.Equal(t, "yt7u-eiyg", rec.Identifier)
	assert.Equal(t, "2025-01-12 19:39:15 UTC", rec.DownloadedAt)
	assert.Equal(t, "yt7u-eiyg_1736710755.963349_NCHS_Births.csv.gz", rec.Filename)
}

func TestParseDownloadFilenameTruncatesFraction(t *testing.T) {
	rec, ok := ParseDownloadFilename("abcd-1234_1736710755.999999_x.csv")
	require.True(t, ok)
	assert.Equal(t, "2025-01-12 19:39:15 UTC", rec.DownloadedAt)
}

func TestParseDownloadFilenameRejects(t *testing.T) {
	for _, line := range []string{
		"README.txt",
		"abcd-1234_1736710755_x.csv", // no fraction
		"abcd1234_1736710755.1_x.csv",
		"abcd-1234_1736710755.1", // no trailing underscore
		"_abcd-1234_1736710755.1_x.csv",
	} {
		_, ok := ParseDownloadFilename(line)
		assert.False(t, ok, line)
	}
}

func TestBuildDownloadIndex(t *testing.T) {
	input := strings.Join([]string{
		"aaaa-bbbb_1736710755.1_first.csv",
		"not a download",
		"",
		"cccc-dddd_1736710800.5_other.csv",
		"aaaa-bbbb_1736797155.2_second.csv",
	}, "\n") + "\n"

	var logs bytes.Buffer
	index, err := BuildDownloadIndex(strings.NewReader(input), zerolog.New(&logs))
	require.NoError(t, err)

	assert.Equal(t, 2, index.Len())
	assert.Equal(t, []string{"aaaa-bbbb", "cccc-dddd"}, index.Identifiers())

	recs, ok := index.Lookup("aaaa-bbbb")
	require.True(t, ok)
	require.Len(t, recs, 2)
	assert.Equal(t, "aaaa-bbbb_1736710755.1_first.csv", recs[0].Filename)
	assert.Equal(t, "aaaa-bbbb_1736797155.2_second.csv", recs[1].Filename)
	assert.Equal(t, "2025-01-13 19:39:15 UTC", recs[1].DownloadedAt)

	last, ok := index.Last("aaaa-bbbb")
	require.True(t, ok)
	assert.Equal(t, "aaaa-bbbb_1736797155.2_second.csv", last.Filename)

	assert.Contains(t, logs.String(), "unparseable filename")
	assert.Contains(t, logs.String(), "more than once")
}

func TestBuildDownloadIndexHandlesCRLF(t *testing.T) {
	index, err := BuildDownloadIndex(strings.NewReader("aaaa-bbbb_1736710755.1_x.csv\r\n"), zerolog.Nop())
	require.NoError(t, err)
	rec, ok := index.Last("aaaa-bbbb")
	require.True(t, ok)
	assert.Equal(t, "aaaa-bbbb_1736710755.1_x.csv", rec.Filename)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestBuildDownloadIndexReaderError(t *testing.T) {
	_, err := BuildDownloadIndex(failingReader{}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestBuildDownloadIndexSkipsOverlongLine(t *testing.T) {
	input := "abcd-1234_1736710755.1_a.csv\n" +
		"efgh-5678_1736710755.1_" + strings.Repeat("x", maxLineBytes) + "\n" +
		"ijkl-9012_1736710755.1_c.csv\n"

	var logs bytes.Buffer
	idx, err := BuildDownloadIndex(strings.NewReader(input), zerolog.New(&logs))
	require.NoError(t, err)
	assert.Equal(t, []string{"abcd-1234", "ijkl-9012"}, idx.Identifiers())
	assert.Contains(t, logs.String(), "too long")
}
