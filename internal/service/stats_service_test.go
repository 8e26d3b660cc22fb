package service

import (
	"context"
	"errors"
	"testing"

	"scoreboard/internal/core"
	"scoreboard/internal/events"
	"scoreboard/internal/store/memory"
)

func newTestService(t *testing.T) (*StatsService, *events.Subscriber, *events.Hub) {
	t.Helper()
	hub := events.NewHub()
	sub := hub.Subscribe()
	t.Cleanup(func() { hub.Unsubscribe(sub) })
	svc := NewStatsService(memory.New(), events.NewNotifier(hub, nil))
	return svc, sub, hub
}

func drainReloads(sub *events.Subscriber) int {
	n := 0
	for {
		select {
		case <-sub.Events():
			n++
			continue
		default:
		}
		return n
	}
}

func TestSetAmountRecomputesTotal(t *testing.T) {
	ctx := context.Background()
	svc, sub, _ := newTestService(t)

	e, err := svc.AddEmployee(ctx, "Анна", core.TeamLeft)
	if err != nil {
		t.Fatalf("AddEmployee: %v", err)
	}
	drainReloads(sub)

	total, err := svc.SetAmount(ctx, e.ID, "ПТ", "5к")
	if err != nil {
		t.Fatalf("SetAmount: %v", err)
	}
	if total != 5000 {
		t.Errorf("total = %d, want 5000", total)
	}

	total, err = svc.SetAmount(ctx, e.ID, "СБ", "2,5к")
	if err != nil {
		t.Fatalf("SetAmount: %v", err)
	}
	if total != 7500 {
		t.Errorf("total = %d, want 7500", total)
	}

	// Garbage parses to 0, overwriting the day.
	total, err = svc.SetAmount(ctx, e.ID, "СБ", "garbage")
	if err != nil {
		t.Fatalf("SetAmount: %v", err)
	}
	if total != 5000 {
		t.Errorf("total = %d, want 5000", total)
	}

	if got := drainReloads(sub); got != 3 {
		t.Errorf("reload events = %d, want 3", got)
	}
}

func TestAmountsNeverNegative(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	e, _ := svc.AddEmployee(ctx, "Анна", core.TeamLeft)

	if total, err := svc.SetAmount(ctx, e.ID, "ПТ", "-500"); err != nil || total != 0 {
		t.Errorf("SetAmount(-500) total = %d, err = %v; want 0, nil", total, err)
	}

	if _, err := svc.SetAmount(ctx, e.ID, "ПТ", "1000"); err != nil {
		t.Fatal(err)
	}
	total, err := svc.IncrementAmount(ctx, e.ID, "ПТ", "-5кк")
	if err != nil {
		t.Fatalf("IncrementAmount: %v", err)
	}
	if total != 0 {
		t.Errorf("total after huge negative delta = %d, want 0", total)
	}
}

func TestIncrementAmount(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	e, _ := svc.AddEmployee(ctx, "Анна", core.TeamLeft)
	if _, err := svc.SetAmount(ctx, e.ID, "ПТ", "5к"); err != nil {
		t.Fatal(err)
	}
	total, err := svc.IncrementAmount(ctx, e.ID, "ПТ", "1000")
	if err != nil {
		t.Fatalf("IncrementAmount: %v", err)
	}
	if total != 6000 {
		t.Errorf("total = %d, want 6000", total)
	}

	// Incrementing a day with no row starts from zero.
	total, err = svc.IncrementAmount(ctx, e.ID, "ЧТ", "250")
	if err != nil {
		t.Fatal(err)
	}
	if total != 6250 {
		t.Errorf("total = %d, want 6250", total)
	}
}

func TestMutationValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	e, _ := svc.AddEmployee(ctx, "Анна", core.TeamLeft)

	if _, err := svc.SetAmount(ctx, e.ID, "ВС", "100"); !errors.Is(err, core.ErrInvalidDay) {
		t.Errorf("unknown day err = %v, want ErrInvalidDay", err)
	}
	if _, err := svc.SetAmount(ctx, 404, "ПТ", "100"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing employee err = %v, want ErrNotFound", err)
	}
	if _, err := svc.IncrementAmount(ctx, 404, "ПТ", "100"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing employee err = %v, want ErrNotFound", err)
	}
	if _, err := svc.AddEmployee(ctx, "   ", core.TeamLeft); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("blank name err = %v, want ErrEmptyName", err)
	}
	if _, err := svc.AddEmployee(ctx, "Борис", "center"); !errors.Is(err, core.ErrInvalidTeam) {
		t.Errorf("bad team err = %v, want ErrInvalidTeam", err)
	}
	if err := svc.SetEmployeeTeam(ctx, e.ID, "center"); !errors.Is(err, core.ErrInvalidTeam) {
		t.Errorf("bad team err = %v, want ErrInvalidTeam", err)
	}
	if err := svc.RenameTeam(ctx, "center", "X"); !errors.Is(err, core.ErrInvalidTeam) {
		t.Errorf("bad team key err = %v, want ErrInvalidTeam", err)
	}
	if err := svc.RenameEmployee(ctx, 404, "Имя"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("rename missing err = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteEmployee(ctx, 404); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("delete missing err = %v, want ErrNotFound", err)
	}
	if _, err := svc.TeamAggregate(ctx, "center"); !errors.Is(err, core.ErrInvalidTeam) {
		t.Errorf("aggregate bad team err = %v, want ErrInvalidTeam", err)
	}
}

func TestAddEmployeeSeedsAllDays(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	e, err := svc.AddEmployee(ctx, "Анна", core.TeamLeft)
	if err != nil {
		t.Fatal(err)
	}
	matrix, err := svc.ResultMatrix(ctx)
	if err != nil {
		t.Fatal(err)
	}
	row := matrix[e.ID]
	if len(row) != len(core.Days) {
		t.Fatalf("seeded %d day rows, want %d", len(row), len(core.Days))
	}
	for _, d := range core.Days {
		if row[d] != 0 {
			t.Errorf("day %s = %d, want 0", d, row[d])
		}
	}
}

func TestResetAllIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	a, _ := svc.AddEmployee(ctx, "Анна", core.TeamLeft)
	b, _ := svc.AddEmployee(ctx, "Борис", core.TeamRight)
	if _, err := svc.SetAmount(ctx, a.ID, "ПТ", "5к"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SetAmount(ctx, b.ID, "СБ", "3к"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.ResetAll(ctx); err != nil {
			t.Fatalf("ResetAll: %v", err)
		}
		for _, key := range []string{core.TeamLeft, core.TeamRight} {
			agg, err := svc.TeamAggregate(ctx, key)
			if err != nil {
				t.Fatal(err)
			}
			if agg.GrandTotal != 0 {
				t.Errorf("reset %d: %s grand total = %d, want 0", i, key, agg.GrandTotal)
			}
			for _, e := range agg.Employees {
				if e.Total != 0 {
					t.Errorf("reset %d: employee %s total = %d, want 0", i, e.Name, e.Total)
				}
			}
		}
	}
}

func TestAggregateInvariants(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	a, _ := svc.AddEmployee(ctx, "Анна", core.TeamLeft)
	b, _ := svc.AddEmployee(ctx, "Борис", core.TeamLeft)
	c, _ := svc.AddEmployee(ctx, "Вера", core.TeamRight)

	writes := []struct {
		id   int64
		day  string
		raw  string
	}{
		{a.ID, "ПТ", "5к"},
		{a.ID, "СБ", "1500"},
		{b.ID, "ПТ", "2кк"},
		{b.ID, "ЧТ", "-10"}, // clamps to 0
		{c.ID, "ВТ", "7"},
	}
	for _, w := range writes {
		if _, err := svc.SetAmount(ctx, w.id, w.day, w.raw); err != nil {
			t.Fatalf("SetAmount(%d, %s, %q): %v", w.id, w.day, w.raw, err)
		}
	}

	for _, key := range []string{core.TeamLeft, core.TeamRight} {
		agg, err := svc.TeamAggregate(ctx, key)
		if err != nil {
			t.Fatal(err)
		}
		var byDay, byEmployee int64
		for _, d := range core.Days {
			byDay += agg.TotalsByDay[d]
		}
		for _, e := range agg.Employees {
			byEmployee += e.Total
		}
		if agg.GrandTotal != byDay {
			t.Errorf("%s: grand total %d != day sum %d", key, agg.GrandTotal, byDay)
		}
		if agg.GrandTotal != byEmployee {
			t.Errorf("%s: grand total %d != employee sum %d", key, agg.GrandTotal, byEmployee)
		}
	}

	left, _ := svc.TeamAggregate(ctx, core.TeamLeft)
	if left.GrandTotal != 2_006_500 {
		t.Errorf("left grand total = %d, want 2006500", left.GrandTotal)
	}
	// Борис (2кк) ahead of Анна (6500).
	if left.Employees[0].ID != b.ID || left.Employees[1].ID != a.ID {
		t.Errorf("left order = %v", left.Employees)
	}
}

// The full admin flow from the scoreboard's perspective: one employee, two
// edits, one subscriber watching.
func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	svc, sub, _ := newTestService(t)

	alice, err := svc.AddEmployee(ctx, "Alice", core.TeamLeft)
	if err != nil {
		t.Fatalf("AddEmployee: %v", err)
	}
	if _, err := svc.SetAmount(ctx, alice.ID, "ПТ", "5к"); err != nil {
		t.Fatalf("SetAmount: %v", err)
	}
	if _, err := svc.IncrementAmount(ctx, alice.ID, "ПТ", "1000"); err != nil {
		t.Fatalf("IncrementAmount: %v", err)
	}

	got, err := svc.RecomputeEmployeeTotal(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != 6000 {
		t.Errorf("Alice total = %d, want 6000", got)
	}

	left, err := svc.TeamAggregate(ctx, core.TeamLeft)
	if err != nil {
		t.Fatal(err)
	}
	if left.TotalsByDay["ПТ"] != 6000 {
		t.Errorf("ПТ day sum = %d, want 6000", left.TotalsByDay["ПТ"])
	}
	if left.GrandTotal != 6000 {
		t.Errorf("grand total = %d, want 6000", left.GrandTotal)
	}

	if got := drainReloads(sub); got != 3 {
		t.Errorf("reload events = %d, want 3 (one per mutation)", got)
	}
}

func TestTeamRename(t *testing.T) {
	ctx := context.Background()
	svc, sub, _ := newTestService(t)

	if err := svc.RenameTeam(ctx, core.TeamLeft, "  Отдел продаж  "); err != nil {
		t.Fatal(err)
	}
	agg, err := svc.TeamAggregate(ctx, core.TeamLeft)
	if err != nil {
		t.Fatal(err)
	}
	if agg.Name != "Отдел продаж" {
		t.Errorf("team name = %q, want trimmed rename", agg.Name)
	}
	if got := drainReloads(sub); got != 1 {
		t.Errorf("reload events = %d, want 1", got)
	}
}
