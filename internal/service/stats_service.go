// Package service orchestrates scoreboard mutations across the store and
// the change notifier.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"scoreboard/internal/core"
	"scoreboard/internal/events"
	"scoreboard/internal/store"
)

// StatsService owns every read and mutation of the scoreboard. Each
// mutation commits to the store first, recomputes the affected cached
// total, then signals connected viewers. Notification is best-effort and
// never fails the mutation.
type StatsService struct {
	store    store.Store
	notifier *events.Notifier
}

func NewStatsService(st store.Store, notifier *events.Notifier) *StatsService {
	return &StatsService{store: st, notifier: notifier}
}

// TeamAggregate rebuilds the derived view of one team. It is computed per
// read; only per-employee totals are cached.
func (s *StatsService) TeamAggregate(ctx context.Context, teamKey string) (core.TeamAggregate, error) {
	if !core.ValidTeamKey(teamKey) {
		return core.TeamAggregate{}, core.ErrInvalidTeam
	}

	team, err := s.store.Team(ctx, teamKey)
	if errors.Is(err, core.ErrNotFound) {
		// Seeded by migration, but fall back to the key as display name.
		team = core.Team{Key: teamKey, Name: teamKey}
	} else if err != nil {
		return core.TeamAggregate{}, fmt.Errorf("load team: %w", err)
	}

	employees, err := s.store.EmployeesByTeam(ctx, teamKey)
	if err != nil {
		return core.TeamAggregate{}, fmt.Errorf("load team employees: %w", err)
	}
	results, err := s.store.ResultsByTeam(ctx, teamKey)
	if err != nil {
		return core.TeamAggregate{}, fmt.Errorf("load team results: %w", err)
	}

	return core.BuildTeamAggregate(team, employees, results), nil
}

// RecomputeEmployeeTotal sums the employee's results, persists the cached
// total and returns it. Every amount-affecting mutation funnels through
// here; totals are never edited any other way.
func (s *StatsService) RecomputeEmployeeTotal(ctx context.Context, employeeID int64) (int64, error) {
	results, err := s.store.ResultsByEmployee(ctx, employeeID)
	if err != nil {
		return 0, fmt.Errorf("load results for employee %d: %w", employeeID, err)
	}
	total := core.SumResults(results)

	err = s.store.SetEmployeeTotal(ctx, employeeID, total)
	if errors.Is(err, core.ErrNotFound) {
		// Employee vanished between the write and the recompute; the
		// result rows are gone with it.
		return total, nil
	}
	if err != nil {
		return total, fmt.Errorf("persist total for employee %d: %w", employeeID, err)
	}
	return total, nil
}

// SetAmount parses raw and stores it as the (employee, day) amount, clamped
// at zero. Returns the employee's recomputed total.
func (s *StatsService) SetAmount(ctx context.Context, employeeID int64, day, raw string) (int64, error) {
	day = strings.TrimSpace(day)
	if !core.ValidDay(day) {
		return 0, core.ErrInvalidDay
	}
	if _, err := s.store.Employee(ctx, employeeID); err != nil {
		return 0, err
	}

	amount := clampZero(core.ParseAmount(raw))
	if err := s.store.UpsertResult(ctx, employeeID, day, amount); err != nil {
		return 0, err
	}

	total, err := s.RecomputeEmployeeTotal(ctx, employeeID)
	if err != nil {
		// The result row is already committed; report the recompute
		// failure without undoing the write.
		return total, err
	}

	s.notify(ctx)
	return total, nil
}

// IncrementAmount parses raw as a signed delta and applies it to the
// (employee, day) amount, clamping the outcome at zero.
func (s *StatsService) IncrementAmount(ctx context.Context, employeeID int64, day, raw string) (int64, error) {
	day = strings.TrimSpace(day)
	if !core.ValidDay(day) {
		return 0, core.ErrInvalidDay
	}
	if _, err := s.store.Employee(ctx, employeeID); err != nil {
		return 0, err
	}

	current, err := s.store.ResultAmount(ctx, employeeID, day)
	if err != nil {
		return 0, err
	}
	amount := clampZero(current + core.ParseAmount(raw))
	if err := s.store.UpsertResult(ctx, employeeID, day, amount); err != nil {
		return 0, err
	}

	total, err := s.RecomputeEmployeeTotal(ctx, employeeID)
	if err != nil {
		return total, err
	}

	s.notify(ctx)
	return total, nil
}

// ResetAll zeroes every result and every cached total.
func (s *StatsService) ResetAll(ctx context.Context) error {
	if err := s.store.ResetAllResults(ctx); err != nil {
		return fmt.Errorf("reset results: %w", err)
	}
	s.notify(ctx)
	return nil
}

// AddEmployee creates an employee with six zeroed day results.
func (s *StatsService) AddEmployee(ctx context.Context, name, teamKey string) (core.Employee, error) {
	name, err := core.ValidateEmployeeName(name)
	if err != nil {
		return core.Employee{}, err
	}
	if !core.ValidTeamKey(teamKey) {
		return core.Employee{}, core.ErrInvalidTeam
	}

	employee, err := s.store.CreateEmployee(ctx, name, teamKey)
	if err != nil {
		return core.Employee{}, err
	}
	for _, day := range core.Days {
		if err := s.store.UpsertResult(ctx, employee.ID, day, 0); err != nil {
			return employee, fmt.Errorf("seed results: %w", err)
		}
	}

	s.notify(ctx)
	return employee, nil
}

// DeleteEmployee removes the employee and all of its results.
func (s *StatsService) DeleteEmployee(ctx context.Context, employeeID int64) error {
	if err := s.store.DeleteEmployee(ctx, employeeID); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

func (s *StatsService) RenameEmployee(ctx context.Context, employeeID int64, name string) error {
	name, err := core.ValidateEmployeeName(name)
	if err != nil {
		return err
	}
	if err := s.store.RenameEmployee(ctx, employeeID, name); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

func (s *StatsService) SetEmployeeTeam(ctx context.Context, employeeID int64, teamKey string) error {
	if !core.ValidTeamKey(teamKey) {
		return core.ErrInvalidTeam
	}
	if err := s.store.SetEmployeeTeam(ctx, employeeID, teamKey); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// RenameTeam updates a team's display name. Keys are fixed; only the two
// seeded teams can be renamed.
func (s *StatsService) RenameTeam(ctx context.Context, teamKey, name string) error {
	if !core.ValidTeamKey(teamKey) {
		return core.ErrInvalidTeam
	}
	if err := s.store.RenameTeam(ctx, teamKey, strings.TrimSpace(name)); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// Teams lists both teams for the admin page.
func (s *StatsService) Teams(ctx context.Context) ([]core.Team, error) {
	return s.store.Teams(ctx)
}

// Employees lists every employee ordered by ID for the admin page.
func (s *StatsService) Employees(ctx context.Context) ([]core.Employee, error) {
	return s.store.Employees(ctx)
}

// ResultMatrix returns employee -> day -> amount for the admin grid.
func (s *StatsService) ResultMatrix(ctx context.Context) (map[int64]map[string]int64, error) {
	results, err := s.store.Results(ctx)
	if err != nil {
		return nil, err
	}
	matrix := make(map[int64]map[string]int64)
	for _, r := range results {
		row, ok := matrix[r.EmployeeID]
		if !ok {
			row = make(map[string]int64, len(core.Days))
			matrix[r.EmployeeID] = row
		}
		row[r.Day] = r.Amount
	}
	return matrix, nil
}

func (s *StatsService) notify(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	s.notifier.StatsChanged(ctx)
}

func clampZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
