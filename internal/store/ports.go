// Package store defines the persistence ports for teams, employees and day
// results. Adapters live in the sqlite and memory subpackages.
package store

import (
	"context"

	"scoreboard/internal/core"
)

// Ports for the persistence adapters. Lookups for missing rows return
// core.ErrNotFound.
type (
	TeamStore interface {
		// Teams returns both teams ordered by key.
		Teams(ctx context.Context) ([]core.Team, error)
		Team(ctx context.Context, key string) (core.Team, error)
		RenameTeam(ctx context.Context, key, name string) error
	}

	EmployeeStore interface {
		// Employees returns every employee ordered by ID.
		Employees(ctx context.Context) ([]core.Employee, error)
		EmployeesByTeam(ctx context.Context, teamKey string) ([]core.Employee, error)
		Employee(ctx context.Context, id int64) (core.Employee, error)
		CreateEmployee(ctx context.Context, name, teamKey string) (core.Employee, error)
		RenameEmployee(ctx context.Context, id int64, name string) error
		SetEmployeeTeam(ctx context.Context, id int64, teamKey string) error
		// SetEmployeeTotal persists the cached total after a recompute.
		SetEmployeeTotal(ctx context.Context, id int64, total int64) error
		// DeleteEmployee removes the employee and all of its results.
		DeleteEmployee(ctx context.Context, id int64) error
	}

	ResultStore interface {
		Results(ctx context.Context) ([]core.Result, error)
		ResultsByEmployee(ctx context.Context, employeeID int64) ([]core.Result, error)
		ResultsByTeam(ctx context.Context, teamKey string) ([]core.Result, error)
		// ResultAmount returns 0 for a pair that has no row yet.
		ResultAmount(ctx context.Context, employeeID int64, day string) (int64, error)
		UpsertResult(ctx context.Context, employeeID int64, day string, amount int64) error
		// ResetAllResults zeroes every result amount and every cached total.
		ResetAllResults(ctx context.Context) error
	}

	// Store is the full persistence surface used by the service layer.
	Store interface {
		TeamStore
		EmployeeStore
		ResultStore
		Close() error
	}
)
