package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"scoreboard/internal/core"
)

// requireAdminPost gates the mutation endpoints: POST only, with a live
// admin session. Returns false after writing the response itself.
func (s *Server) requireAdminPost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	if !s.isAdmin(r) {
		writeJSONStatus(w, http.StatusForbidden, "error", "Требуется авторизация")
		return false
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		writeJSONStatus(w, http.StatusBadRequest, "error", "Некорректный запрос")
		return false
	}
	return true
}

// writeMutationError maps domain errors onto the JSON envelope.
func writeMutationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeJSONStatus(w, http.StatusNotFound, "error", "Сотрудник не найден")
	case errors.Is(err, core.ErrInvalidDay):
		writeJSONStatus(w, http.StatusBadRequest, "error", "Некорректный день")
	case errors.Is(err, core.ErrInvalidTeam):
		writeJSONStatus(w, http.StatusBadRequest, "error", "Некорректная команда")
	case errors.Is(err, core.ErrEmptyName):
		writeJSONStatus(w, http.StatusBadRequest, "error", "Имя пустое")
	default:
		slog.ErrorContext(r.Context(), "Mutation failed", "error", err, "url", r.URL.Path)
		writeJSONStatus(w, http.StatusInternalServerError, "error", "Внутренняя ошибка")
	}
}

func (s *Server) handleTeamRename(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdminPost(w, r) {
		return
	}

	key := strings.TrimSpace(r.Form.Get("key"))
	name := sanitizeInput(r.Form.Get("name"))
	if err := s.stats.RenameTeam(r.Context(), key, name); err != nil {
		writeMutationError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, "success", "Название команды сохранено")
}

func (s *Server) handleEmployeeAdd(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdminPost(w, r) {
		return
	}

	name := sanitizeInput(r.Form.Get("name"))
	teamKey := strings.TrimSpace(r.Form.Get("team_key"))
	if teamKey == "" {
		teamKey = core.TeamLeft
	}
	if _, err := s.stats.AddEmployee(r.Context(), name, teamKey); err != nil {
		writeMutationError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, "success", "Сотрудник добавлен")
}

func (s *Server) handleEmployeeRename(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdminPost(w, r) {
		return
	}

	id, err := parseEmployeeID(r)
	if err != nil {
		writeJSONStatus(w, http.StatusBadRequest, "error", "Некорректный запрос")
		return
	}
	if err := s.stats.RenameEmployee(r.Context(), id, sanitizeInput(r.Form.Get("name"))); err != nil {
		writeMutationError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, "success", "Имя обновлено")
}

func (s *Server) handleEmployeeDelete(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdminPost(w, r) {
		return
	}

	id, err := parseEmployeeID(r)
	if err != nil {
		writeJSONStatus(w, http.StatusBadRequest, "error", "Некорректный запрос")
		return
	}
	if err := s.stats.DeleteEmployee(r.Context(), id); err != nil {
		writeMutationError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, "success", "Сотрудник удалён")
}

func (s *Server) handleEmployeeSetTeam(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdminPost(w, r) {
		return
	}

	id, err := parseEmployeeID(r)
	if err != nil {
		writeJSONStatus(w, http.StatusBadRequest, "error", "Некорректный запрос")
		return
	}
	teamKey := strings.TrimSpace(r.Form.Get("team_key"))
	if err := s.stats.SetEmployeeTeam(r.Context(), id, teamKey); err != nil {
		writeMutationError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, "success", "Команда обновлена")
}

func (s *Server) handleResultUpdate(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdminPost(w, r) {
		return
	}

	id, err := parseEmployeeID(r)
	if err != nil {
		writeJSONStatus(w, http.StatusBadRequest, "error", "Некорректный запрос")
		return
	}
	day := r.Form.Get("day")
	amount := r.Form.Get("amount")
	if _, err := s.stats.SetAmount(r.Context(), id, day, amount); err != nil {
		writeMutationError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, "success", "Сумма обновлена")
}

func (s *Server) handleResultIncrement(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdminPost(w, r) {
		return
	}

	id, err := parseEmployeeID(r)
	if err != nil {
		writeJSONStatus(w, http.StatusBadRequest, "error", "Некорректный запрос")
		return
	}
	day := r.Form.Get("day")
	delta := r.Form.Get("delta")
	if _, err := s.stats.IncrementAmount(r.Context(), id, day, delta); err != nil {
		writeMutationError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, "success", "Изменено на дельту")
}

func (s *Server) handleResetAll(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdminPost(w, r) {
		return
	}

	if err := s.stats.ResetAll(r.Context()); err != nil {
		writeMutationError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, "success", "Вся статистика обнулена")
}
