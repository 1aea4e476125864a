// models/dataset.go
package models

// DefaultDatasetName is used whenever the catalog could not supply a name.
const DefaultDatasetName = "UNKN_SOC_NAME"

// Which reconciliation pass produced a DatasetRecord.
const (
	SourceHomepage = "homepage"
	SourceLeftover = "leftover"
)

// DownloadRecord is one line of the download list, e.g.
// yt7u-eiyg_1736710755.963349_NCHS_Births.csv.gz
type DownloadRecord struct {
	Identifier   string
	Filename     string // the full download list line
	DownloadedAt string // "YYYY-MM-DD HH:MM:SS UTC"
}

// DownloadIndex maps an identifier to every download of it, in file order.
// It is built once and then only read.
type DownloadIndex struct {
	order   []string
	records map[string][]DownloadRecord
}

func NewDownloadIndex() *DownloadIndex {
	return &DownloadIndex{records: make(map[string][]DownloadRecord)}
}

// Add appends rec under its identifier and reports whether the identifier
// had been seen before.
func (idx *DownloadIndex) Add(rec DownloadRecord) (repeated bool) {
	existing, repeated := idx.records[rec.Identifier]
	if !repeated {
		idx.order = append(idx.order, rec.Identifier)
	}
	idx.records[rec.Identifier] = append(existing, rec)
	return repeated
}

func (idx *DownloadIndex) Lookup(identifier string) ([]DownloadRecord, bool) {
	recs, ok := idx.records[identifier]
	return recs, ok
}

// Last returns the most recently added record for identifier. Callers use it
// for the snapshot filename and timestamp: when a dataset was downloaded
// several times, the last download in the list wins.
func (idx *DownloadIndex) Last(identifier string) (DownloadRecord, bool) {
	recs, ok := idx.records[identifier]
	if !ok || len(recs) == 0 {
		return DownloadRecord{}, false
	}
	return recs[len(recs)-1], true
}

// Identifiers returns identifiers in the order they first appeared.
func (idx *DownloadIndex) Identifiers() []string {
	out := make([]string, len(idx.order))
	copy(out, idx.order)
	return out
}

func (idx *DownloadIndex) Len() int { return len(idx.order) }

// HomepageEntry is one line of the sitemap homepage list.
type HomepageEntry struct {
	SitemapURL  string
	HomepageURL string

	identifier string
}

func NewHomepageEntry(sitemapURL, homepageURL, identifier string) HomepageEntry {
	return HomepageEntry{SitemapURL: sitemapURL, HomepageURL: homepageURL, identifier: identifier}
}

// Identifier returns the dataset identifier found in the homepage URL, if any.
// An absent identifier means the page is not a dataset homepage.
func (e HomepageEntry) Identifier() (string, bool) {
	return e.identifier, e.identifier != ""
}

// DatasetRecord is one fully reconciled dataset.
type DatasetRecord struct {
	Identifier           string
	Homepage             string
	ArchiveSnapshots     string
	Name                 string
	Description          string
	RawMetadata          string
	SnapshotFilename     string
	SnapshotDownloadedAt string
	Source               string
}

// ResultSet buckets dataset records by their resolved name.
type ResultSet map[string][]DatasetRecord

func (rs ResultSet) Add(rec DatasetRecord) {
	rs[rec.Name] = append(rs[rec.Name], rec)
}

// Len is the total number of records across all names.
func (rs ResultSet) Len() int {
	n := 0
	for _, recs := range rs {
		n += len(recs)
	}
	return n
}

// ReportRow is a single data row of the documentation report. The csv tags
// are the literal column headers.
type ReportRow struct {
	Name                 string `csv:"dataset name" json:"name" db:"name"`
	Identifier           string `csv:"socrata id" json:"socrata_id" db:"socrata_id"`
	SnapshotFilename     string `csv:"download filename" json:"download_filename" db:"download_filename"`
	SnapshotDownloadedAt string `csv:"downloaded ts" json:"downloaded_ts" db:"downloaded_ts"`
	Homepage             string `csv:"dataset homepage" json:"homepage" db:"homepage"`
	Description          string `csv:"description" json:"description" db:"description"`
	ArchiveSnapshots     string `csv:"Internet Archive snapshots" json:"internet_archive_snapshots" db:"internet_archive_snapshots"`
	RawMetadata          string `csv:"addtl socrata metadata" json:"socrata_metadata" db:"socrata_metadata"`
}
