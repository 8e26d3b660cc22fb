// Package worker exports scoreboard snapshots to a spreadsheet whenever
// the data changes.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"scoreboard/internal/amqp"
	"scoreboard/internal/core"
	"scoreboard/internal/sheets"
	"scoreboard/internal/store"
)

// ExportWorker rebuilds the full snapshot from the store and hands it to
// the report writer. It reacts to stats-changed messages and can also be
// run on a timer to catch anything missed.
type ExportWorker struct {
	store  store.Store
	writer sheets.ReportWriter
}

func NewExportWorker(st store.Store, writer sheets.ReportWriter) *ExportWorker {
	return &ExportWorker{store: st, writer: writer}
}

// HandleStatsChanged processes a single stats-changed message from AMQP.
func (w *ExportWorker) HandleStatsChanged(ctx context.Context, msg *amqp.StatsChangedMessage) error {
	slog.InfoContext(ctx, "Processing stats change message", "changed_at", msg.ChangedAt)
	return w.Export(ctx)
}

// Export writes the current snapshot: every team's employees in scoreboard
// order with their per-day amounts and totals.
func (w *ExportWorker) Export(ctx context.Context) error {
	teams, err := w.store.Teams(ctx)
	if err != nil {
		return fmt.Errorf("load teams: %w", err)
	}

	var rows []sheets.ReportRow
	for _, team := range teams {
		employees, err := w.store.EmployeesByTeam(ctx, team.Key)
		if err != nil {
			return fmt.Errorf("load employees for team %s: %w", team.Key, err)
		}
		results, err := w.store.ResultsByTeam(ctx, team.Key)
		if err != nil {
			return fmt.Errorf("load results for team %s: %w", team.Key, err)
		}

		perDay := make(map[int64]map[string]int64, len(employees))
		for _, r := range results {
			row, ok := perDay[r.EmployeeID]
			if !ok {
				row = make(map[string]int64, len(core.Days))
				perDay[r.EmployeeID] = row
			}
			row[r.Day] = r.Amount
		}

		// Same ordering as the scoreboard page.
		agg := core.BuildTeamAggregate(team, employees, results)
		for _, e := range agg.Employees {
			amounts := make([]int64, len(core.Days))
			for i, d := range core.Days {
				amounts[i] = perDay[e.ID][d]
			}
			rows = append(rows, sheets.ReportRow{
				TeamName: team.Name,
				Employee: e.Name,
				Amounts:  amounts,
				Total:    e.Total,
			})
		}
	}

	if err := w.writer.WriteSnapshot(ctx, rows); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot export complete", "rows", len(rows))
	return nil
}
