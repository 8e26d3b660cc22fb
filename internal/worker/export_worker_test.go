package worker

import (
	"context"
	"testing"

	"scoreboard/internal/amqp"
	"scoreboard/internal/core"
	sheetsmem "scoreboard/internal/sheets/memory"
	storemem "scoreboard/internal/store/memory"
)

func TestExportSnapshot(t *testing.T) {
	ctx := context.Background()
	st := storemem.New()
	writer := sheetsmem.New()
	w := NewExportWorker(st, writer)

	a, _ := st.CreateEmployee(ctx, "Анна", core.TeamLeft)
	b, _ := st.CreateEmployee(ctx, "Борис", core.TeamLeft)
	c, _ := st.CreateEmployee(ctx, "Вера", core.TeamRight)
	_ = st.UpsertResult(ctx, a.ID, "ПТ", 1000)
	_ = st.UpsertResult(ctx, b.ID, "ПТ", 5000)
	_ = st.UpsertResult(ctx, b.ID, "СБ", 200)
	_ = st.UpsertResult(ctx, c.ID, "ЧТ", 42)
	_ = st.SetEmployeeTotal(ctx, a.ID, 1000)
	_ = st.SetEmployeeTotal(ctx, b.ID, 5200)
	_ = st.SetEmployeeTotal(ctx, c.ID, 42)

	if err := w.Export(ctx); err != nil {
		t.Fatalf("Export: %v", err)
	}

	rows := writer.Snapshot()
	if len(rows) != 3 {
		t.Fatalf("exported %d rows, want 3", len(rows))
	}

	// Left team first (teams ordered by key), employees by total descending.
	if rows[0].Employee != "Борис" || rows[0].Total != 5200 {
		t.Errorf("row 0 = %+v, want Борис/5200", rows[0])
	}
	if rows[1].Employee != "Анна" {
		t.Errorf("row 1 = %+v, want Анна", rows[1])
	}
	if rows[2].Employee != "Вера" || rows[2].TeamName != "Правая команда" {
		t.Errorf("row 2 = %+v, want Вера in right team", rows[2])
	}

	if len(rows[0].Amounts) != len(core.Days) {
		t.Fatalf("row has %d day columns, want %d", len(rows[0].Amounts), len(core.Days))
	}
	// ПТ is the first day label; СБ the second.
	if rows[0].Amounts[0] != 5000 || rows[0].Amounts[1] != 200 {
		t.Errorf("Борис amounts = %v", rows[0].Amounts)
	}
}

func TestHandleStatsChangedExports(t *testing.T) {
	ctx := context.Background()
	writer := sheetsmem.New()
	w := NewExportWorker(storemem.New(), writer)

	msg := amqp.NewStatsChangedMessage(1725148800)
	if err := w.HandleStatsChanged(ctx, msg); err != nil {
		t.Fatalf("HandleStatsChanged: %v", err)
	}
	if writer.Writes() != 1 {
		t.Errorf("writes = %d, want 1", writer.Writes())
	}
}
