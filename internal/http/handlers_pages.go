package http

import (
	"log/slog"
	"net/http"
	"strings"

	"scoreboard/internal/core"
)

func (s *Server) isAdmin(r *http.Request) bool {
	sess, err := s.sessionStore.Get(r, sessionName)
	if err != nil {
		return false
	}
	admin, _ := sess.Values["is_admin"].(bool)
	return admin
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	left, err := s.stats.TeamAggregate(r.Context(), core.TeamLeft)
	if err != nil {
		slog.ErrorContext(r.Context(), "Team aggregate error", "team", core.TeamLeft, "error", err)
		http.Error(w, "failed to load scoreboard", http.StatusInternalServerError)
		return
	}
	right, err := s.stats.TeamAggregate(r.Context(), core.TeamRight)
	if err != nil {
		slog.ErrorContext(r.Context(), "Team aggregate error", "team", core.TeamRight, "error", err)
		http.Error(w, "failed to load scoreboard", http.StatusInternalServerError)
		return
	}

	// Each board carries the day order alongside its aggregate so the
	// team sub-template can render columns in scoreboard order.
	type board struct {
		core.TeamAggregate
		Days []string
	}
	data := struct {
		TargetDaily  int64
		TargetWeekly int64
		Left         board
		Right        board
	}{
		TargetDaily:  core.TargetDaily,
		TargetWeekly: core.TargetWeekly,
		Left:         board{TeamAggregate: left, Days: core.Days},
		Right:        board{TeamAggregate: right, Days: core.Days},
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleAdminPage(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	if !s.isAdmin(r) {
		s.renderLogin(w, r, "")
		return
	}

	teams, err := s.stats.Teams(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Teams list error", "error", err)
		http.Error(w, "failed to load admin data", http.StatusInternalServerError)
		return
	}
	employees, err := s.stats.Employees(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Employees list error", "error", err)
		http.Error(w, "failed to load admin data", http.StatusInternalServerError)
		return
	}
	results, err := s.stats.ResultMatrix(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Result matrix error", "error", err)
		http.Error(w, "failed to load admin data", http.StatusInternalServerError)
		return
	}

	data := struct {
		Teams     []core.Team
		Employees []core.Employee
		Days      []string
		Results   map[int64]map[string]int64
	}{
		Teams:     teams,
		Employees: employees,
		Days:      core.Days,
		Results:   results,
	}

	if err := s.templates.ExecuteTemplate(w, "admin.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Admin template execution failed", "error", err, "template", "admin.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, errorMsg string) {
	data := struct{ Error string }{Error: errorMsg}
	if err := s.templates.ExecuteTemplate(w, "admin_login.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Login template execution failed", "error", err, "template", "admin_login.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(r.Form.Get("password")) != s.adminPassword {
		w.WriteHeader(http.StatusUnauthorized)
		s.renderLogin(w, r, "Неверный пароль")
		return
	}

	sess, _ := s.sessionStore.Get(r, sessionName)
	sess.Values["is_admin"] = true
	if err := sess.Save(r, w); err != nil {
		slog.ErrorContext(r.Context(), "Session save error", "error", err)
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusFound)
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess, _ := s.sessionStore.Get(r, sessionName)
	sess.Values = make(map[interface{}]interface{})
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		slog.ErrorContext(r.Context(), "Session save error", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
