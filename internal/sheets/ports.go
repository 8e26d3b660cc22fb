// Package sheets defines the outbound port for exporting scoreboard
// snapshots to a spreadsheet.
package sheets

import "context"

// ReportRow is one employee's line in the exported snapshot. Amounts are
// ordered like core.Days.
type ReportRow struct {
	TeamName string
	Employee string
	Amounts  []int64
	Total    int64
}

// ReportWriter replaces the previous snapshot with rows. Implementations:
// google (Sheets API) and memory (tests).
type ReportWriter interface {
	WriteSnapshot(ctx context.Context, rows []ReportRow) error
}
