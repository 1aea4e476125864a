// services/report_service.go
package services

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/gewnthar/datasetdoc/models"
)

const reportPreambleText = `This is supplementary information for a series of data.cdc.gov dataset snapshots taken in January 2025.
Methodology notes:        
In January 2025, the sitemaps.xml files for data.cdc.gov were used to come up with a list of dataset homepages served by that host.
From there, the datasets themselves were downloaded (download_filename, downloaded_ts). The socrata id was inferred from the dataset homepage's URL, and the downloaded filename became: socrata-id_download-timestamp-as-unix-epoch_name-downloaded-file-name.
To construct the rest of this documentation, socrata metadata was queried for the id. If found, the socrata name metadata became the dataset_name column, and the socrata_description became the description column.
All the socrata metadata is a single string in the additional metadata column. The socrata metadata was queried on Feb. 13. 2025. If the socrata metadata query was unsuccessful, the "UNKN_SOC_NAME" name was used.
The dataset homepages include metadata about the datasets themselves and change over time. The Internet Archive has snapshots of these homepages, and links to the snpshots are in the Internet Archive snapshots column.
The data are ordered by dataset name and may contain more than one dataset endpoint, identified by socrata id.

The dataset snapshots are available at: https://cdcdotgovarchive.org/CDC_datasets/.
The script that built this is here: https://github.com/YakShavingAsAService/data.cdc.gov-metadata `

// ReportPreamble returns the provenance lines written above the header row.
func ReportPreamble() []string {
	return strings.Split(reportPreambleText, "\n")
}

// AssembleReport orders records by dataset name, then by socrata id within a
// name. Records sharing both keep their original relative order.
func AssembleReport(results models.ResultSet) []models.ReportRow {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	slices.Sort(names)

	rows := make([]models.ReportRow, 0, results.Len())
	for _, name := range names {
		recs := slices.Clone(results[name])
		slices.SortStableFunc(recs, func(a, b models.DatasetRecord) int {
			return cmp.Compare(a.Identifier, b.Identifier)
		})
		for _, rec := range recs {
			rows = append(rows, models.ReportRow{
				Name:                 name,
				Identifier:           rec.Identifier,
				SnapshotFilename:     rec.SnapshotFilename,
				SnapshotDownloadedAt: rec.SnapshotDownloadedAt,
				Homepage:             rec.Homepage,
				Description:          rec.Description,
				ArchiveSnapshots:     rec.ArchiveSnapshots,
				RawMetadata:          rec.RawMetadata,
			})
		}
	}
	return rows
}

// WriteReport writes each preamble line as a single-cell row, then the header
// row and one row per report row. Blank preamble lines are written as a quoted
// empty cell so the row survives a read back.
func WriteReport(w io.Writer, preamble []string, rows []models.ReportRow) error {
	cw := csv.NewWriter(w)
	for _, line := range preamble {
		if line == "" {
			// csv.Writer emits a bare newline here, which readers drop.
			cw.Flush()
			if _, err := io.WriteString(w, "\"\"\n"); err != nil {
				return fmt.Errorf("failed to write report preamble: %w", err)
			}
			continue
		}
		if err := cw.Write([]string{line}); err != nil {
			return fmt.Errorf("failed to write report preamble: %w", err)
		}
	}

	enc := csvutil.NewEncoder(cw)
	if len(rows) == 0 {
		// Encode writes the header only alongside a value.
		if err := enc.EncodeHeader(models.ReportRow{}); err != nil {
			return fmt.Errorf("failed to write report header: %w", err)
		}
	} else if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode report rows: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}
