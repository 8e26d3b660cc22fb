// Package memory provides an in-memory store implementation used as the
// default development backend and by tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"scoreboard/internal/core"
)

type resultKey struct {
	employeeID int64
	day        string
}

type Store struct {
	mu        sync.Mutex
	teams     map[string]string // key -> name
	employees map[int64]core.Employee
	results   map[resultKey]int64
	nextID    int64
}

func New() *Store {
	return &Store{
		teams: map[string]string{
			core.TeamLeft:  "Левая команда",
			core.TeamRight: "Правая команда",
		},
		employees: make(map[int64]core.Employee),
		results:   make(map[resultKey]int64),
		nextID:    1,
	}
}

func (s *Store) Teams(_ context.Context) ([]core.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.teams))
	for k := range s.teams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	teams := make([]core.Team, 0, len(keys))
	for _, k := range keys {
		teams = append(teams, core.Team{Key: k, Name: s.teams[k]})
	}
	return teams, nil
}

func (s *Store) Team(_ context.Context, key string) (core.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.teams[key]
	if !ok {
		return core.Team{}, core.ErrNotFound
	}
	return core.Team{Key: key, Name: name}, nil
}

func (s *Store) RenameTeam(_ context.Context, key, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[key] = name
	return nil
}

func (s *Store) Employees(_ context.Context) ([]core.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.employeeList(func(core.Employee) bool { return true }), nil
}

func (s *Store) EmployeesByTeam(_ context.Context, teamKey string) ([]core.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.employeeList(func(e core.Employee) bool { return e.TeamKey == teamKey }), nil
}

// employeeList returns matching employees ordered by ID. Callers hold mu.
func (s *Store) employeeList(match func(core.Employee) bool) []core.Employee {
	out := make([]core.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		if match(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Employee(_ context.Context, id int64) (core.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	if !ok {
		return core.Employee{}, core.ErrNotFound
	}
	return e, nil
}

func (s *Store) CreateEmployee(_ context.Context, name, teamKey string) (core.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.employees {
		if e.Name == name {
			return core.Employee{}, fmt.Errorf("employee name %q already exists", name)
		}
	}
	e := core.Employee{ID: s.nextID, Name: name, TeamKey: teamKey}
	s.nextID++
	s.employees[e.ID] = e
	return e, nil
}

func (s *Store) RenameEmployee(_ context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	if !ok {
		return core.ErrNotFound
	}
	e.Name = name
	s.employees[id] = e
	return nil
}

func (s *Store) SetEmployeeTeam(_ context.Context, id int64, teamKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	if !ok {
		return core.ErrNotFound
	}
	e.TeamKey = teamKey
	s.employees[id] = e
	return nil
}

func (s *Store) SetEmployeeTotal(_ context.Context, id int64, total int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	if !ok {
		return core.ErrNotFound
	}
	e.Total = total
	s.employees[id] = e
	return nil
}

func (s *Store) DeleteEmployee(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.employees, id)
	for k := range s.results {
		if k.employeeID == id {
			delete(s.results, k)
		}
	}
	return nil
}

func (s *Store) Results(_ context.Context) ([]core.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultList(func(resultKey) bool { return true }), nil
}

func (s *Store) ResultsByEmployee(_ context.Context, employeeID int64) ([]core.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultList(func(k resultKey) bool { return k.employeeID == employeeID }), nil
}

func (s *Store) ResultsByTeam(_ context.Context, teamKey string) ([]core.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := make(map[int64]struct{})
	for id, e := range s.employees {
		if e.TeamKey == teamKey {
			members[id] = struct{}{}
		}
	}
	return s.resultList(func(k resultKey) bool {
		_, ok := members[k.employeeID]
		return ok
	}), nil
}

// resultList returns matching results in a stable order. Callers hold mu.
func (s *Store) resultList(match func(resultKey) bool) []core.Result {
	out := make([]core.Result, 0, len(s.results))
	for k, amount := range s.results {
		if match(k) {
			out = append(out, core.Result{EmployeeID: k.employeeID, Day: k.day, Amount: amount})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].Day < out[j].Day
	})
	return out
}

func (s *Store) ResultAmount(_ context.Context, employeeID int64, day string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results[resultKey{employeeID, day}], nil
}

func (s *Store) UpsertResult(_ context.Context, employeeID int64, day string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[resultKey{employeeID, day}] = amount
	return nil
}

func (s *Store) ResetAllResults(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.results {
		s.results[k] = 0
	}
	for id, e := range s.employees {
		e.Total = 0
		s.employees[id] = e
	}
	return nil
}

func (s *Store) Close() error { return nil }
