// Package sqlite persists the scoreboard in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"scoreboard/internal/core"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Teams(ctx context.Context) ([]core.Team, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, name FROM teams ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	var teams []core.Team
	for rows.Next() {
		var t core.Team
		if err := rows.Scan(&t.Key, &t.Name); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *Repository) Team(ctx context.Context, key string) (core.Team, error) {
	var t core.Team
	err := r.db.QueryRowContext(ctx, `SELECT key, name FROM teams WHERE key = ?`, key).
		Scan(&t.Key, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Team{}, core.ErrNotFound
	}
	if err != nil {
		return core.Team{}, fmt.Errorf("query team %s: %w", key, err)
	}
	return t, nil
}

func (r *Repository) RenameTeam(ctx context.Context, key, name string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO teams (key, name) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET name = excluded.name`, key, name)
	if err != nil {
		return fmt.Errorf("rename team %s: %w", key, err)
	}
	return nil
}

const employeeColumns = `id, name, team_key, total_sum`

func (r *Repository) Employees(ctx context.Context) ([]core.Employee, error) {
	return r.queryEmployees(ctx,
		`SELECT `+employeeColumns+` FROM employees ORDER BY id ASC`)
}

func (r *Repository) EmployeesByTeam(ctx context.Context, teamKey string) ([]core.Employee, error) {
	return r.queryEmployees(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE team_key = ? ORDER BY id ASC`, teamKey)
}

func (r *Repository) queryEmployees(ctx context.Context, query string, args ...any) ([]core.Employee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	var employees []core.Employee
	for rows.Next() {
		var e core.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.TeamKey, &e.Total); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *Repository) Employee(ctx context.Context, id int64) (core.Employee, error) {
	var e core.Employee
	err := r.db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id).
		Scan(&e.ID, &e.Name, &e.TeamKey, &e.Total)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Employee{}, core.ErrNotFound
	}
	if err != nil {
		return core.Employee{}, fmt.Errorf("query employee %d: %w", id, err)
	}
	return e, nil
}

func (r *Repository) CreateEmployee(ctx context.Context, name, teamKey string) (core.Employee, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO employees (name, team_key, total_sum) VALUES (?, ?, 0)`, name, teamKey)
	if err != nil {
		return core.Employee{}, fmt.Errorf("create employee: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Employee{}, fmt.Errorf("employee insert id: %w", err)
	}

	slog.InfoContext(ctx, "Employee created", "id", id, "name", name, "team", teamKey)
	return core.Employee{ID: id, Name: name, TeamKey: teamKey}, nil
}

func (r *Repository) RenameEmployee(ctx context.Context, id int64, name string) error {
	return r.updateEmployee(ctx, id, `UPDATE employees SET name = ? WHERE id = ?`, name)
}

func (r *Repository) SetEmployeeTeam(ctx context.Context, id int64, teamKey string) error {
	return r.updateEmployee(ctx, id, `UPDATE employees SET team_key = ? WHERE id = ?`, teamKey)
}

func (r *Repository) SetEmployeeTotal(ctx context.Context, id int64, total int64) error {
	return r.updateEmployee(ctx, id, `UPDATE employees SET total_sum = ? WHERE id = ?`, total)
}

// updateEmployee runs a single-column update and maps a missing row to
// core.ErrNotFound.
func (r *Repository) updateEmployee(ctx context.Context, id int64, query string, value any) error {
	res, err := r.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("update employee %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update employee %d: %w", id, err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteEmployee(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE employee_id = ?`, id); err != nil {
		return fmt.Errorf("delete results for employee %d: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete employee %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete employee %d: %w", id, err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	slog.InfoContext(ctx, "Employee deleted", "id", id)
	return nil
}

func (r *Repository) Results(ctx context.Context) ([]core.Result, error) {
	return r.queryResults(ctx,
		`SELECT employee_id, day, amount FROM results ORDER BY employee_id ASC, day ASC`)
}

func (r *Repository) ResultsByEmployee(ctx context.Context, employeeID int64) ([]core.Result, error) {
	return r.queryResults(ctx,
		`SELECT employee_id, day, amount FROM results WHERE employee_id = ? ORDER BY day ASC`, employeeID)
}

func (r *Repository) ResultsByTeam(ctx context.Context, teamKey string) ([]core.Result, error) {
	return r.queryResults(ctx, `
		SELECT r.employee_id, r.day, r.amount
		FROM results r
		JOIN employees e ON e.id = r.employee_id
		WHERE e.team_key = ?
		ORDER BY r.employee_id ASC, r.day ASC`, teamKey)
}

func (r *Repository) queryResults(ctx context.Context, query string, args ...any) ([]core.Result, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []core.Result
	for rows.Next() {
		var res core.Result
		if err := rows.Scan(&res.EmployeeID, &res.Day, &res.Amount); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *Repository) ResultAmount(ctx context.Context, employeeID int64, day string) (int64, error) {
	var amount int64
	err := r.db.QueryRowContext(ctx,
		`SELECT amount FROM results WHERE employee_id = ? AND day = ?`, employeeID, day).
		Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query result amount: %w", err)
	}
	return amount, nil
}

func (r *Repository) UpsertResult(ctx context.Context, employeeID int64, day string, amount int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO results (employee_id, day, amount) VALUES (?, ?, ?)
		ON CONFLICT(employee_id, day) DO UPDATE SET amount = excluded.amount`,
		employeeID, day, amount)
	if err != nil {
		return fmt.Errorf("upsert result (%d, %s): %w", employeeID, day, err)
	}
	return nil
}

func (r *Repository) ResetAllResults(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE results SET amount = 0`); err != nil {
		return fmt.Errorf("zero results: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE employees SET total_sum = 0`); err != nil {
		return fmt.Errorf("zero totals: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	slog.InfoContext(ctx, "All results reset")
	return nil
}
