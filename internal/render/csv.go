package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// Headers for the CSV exports. Amount columns hold plain two-decimal
// numbers, not styled money strings.
var (
	ARAgingCSVHeader   = []string{"Client", "0-30 Days", "31-60 Days", "61-90 Days", "91+ Days", "Total", "Currency"}
	RevenueCSVHeader   = []string{"Period", "Revenue", "DSO (days)", "Currency"}
	TimeEntryCSVHeader = []string{"Date", "Teammate", "Client", "Project", "Service", "Hours", "Billable", "Billed", "Note"}
)

// WriteCSV writes a header row followed by data rows.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename builds the default filename for a report export, e.g.
// "ar_aging_20260825T143000.csv".
func ExportFilename(report string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", report, now.Format("20060102T150405"))
}
