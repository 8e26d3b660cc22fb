// Package core holds the scoreboard domain: teams, employees, day results,
// the amount-parsing grammar and the aggregation rules.
package core

import (
	"errors"
	"strings"
)

const (
	TeamLeft  = "left"
	TeamRight = "right"
)

// Days holds the six working-day labels in display order. The set is fixed:
// results recorded under any other label are ignored by aggregation.
var Days = []string{"ПТ", "СБ", "ПН", "ВТ", "СР", "ЧТ"}

// Display targets rendered on the scoreboard page.
const (
	TargetDaily  int64 = 4_000_000
	TargetWeekly int64 = 24_000_000
)

type (
	Team struct {
		Key  string
		Name string
	}

	Employee struct {
		ID      int64
		Name    string
		TeamKey string
		// Total is the cached sum of the employee's results. It is
		// recomputed after every write, never edited directly.
		Total int64
	}

	// Result is a single (employee, day) amount. At most one exists per
	// pair; amounts are clamped at zero on write.
	Result struct {
		EmployeeID int64
		Day        string
		Amount     int64
	}
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidDay  = errors.New("invalid day")
	ErrInvalidTeam = errors.New("invalid team")
	ErrEmptyName   = errors.New("empty name")
)

// ValidDay reports whether day is one of the six fixed labels.
func ValidDay(day string) bool {
	for _, d := range Days {
		if d == day {
			return true
		}
	}
	return false
}

// ValidTeamKey reports whether key is one of the two fixed team keys.
func ValidTeamKey(key string) bool {
	return key == TeamLeft || key == TeamRight
}

// ValidateEmployeeName trims the name and rejects empty ones.
func ValidateEmployeeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}
