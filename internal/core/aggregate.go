package core

import "sort"

// TeamAggregate is the derived view of one team, rebuilt on every read.
type TeamAggregate struct {
	Key         string
	Name        string
	Employees   []Employee
	TotalsByDay map[string]int64
	GrandTotal  int64
}

// BuildTeamAggregate derives a team's scoreboard view from its employees and
// their results. All six day labels are present in TotalsByDay even when
// zero; results for labels outside the fixed set are ignored. Employees are
// ordered by cached total descending, ties broken by ascending ID.
func BuildTeamAggregate(team Team, employees []Employee, results []Result) TeamAggregate {
	totals := make(map[string]int64, len(Days))
	for _, d := range Days {
		totals[d] = 0
	}

	for _, r := range results {
		if _, ok := totals[r.Day]; ok {
			totals[r.Day] += r.Amount
		}
	}

	var grand int64
	for _, d := range Days {
		grand += totals[d]
	}

	sorted := make([]Employee, len(employees))
	copy(sorted, employees)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Total != sorted[j].Total {
			return sorted[i].Total > sorted[j].Total
		}
		return sorted[i].ID < sorted[j].ID
	})

	return TeamAggregate{
		Key:         team.Key,
		Name:        team.Name,
		Employees:   sorted,
		TotalsByDay: totals,
		GrandTotal:  grand,
	}
}

// SumResults adds up result amounts; it is the single definition of an
// employee's total used by the recompute path.
func SumResults(results []Result) int64 {
	var total int64
	for _, r := range results {
		total += r.Amount
	}
	return total
}
