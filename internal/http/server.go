// Package http serves the scoreboard pages, the admin panel and the
// server-sent event stream that keeps open scoreboards fresh.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/sessions"

	"scoreboard/internal/events"
	"scoreboard/internal/service"
	appweb "scoreboard/web"
)

const sessionName = "ct_session"

// Options carries the security knobs NewServer needs beyond its
// collaborators.
type Options struct {
	AdminPassword string
	SessionSecret string
	CookieSecure  bool
	SSEKeepAlive  time.Duration
}

type Server struct {
	http.Server
	templates     *template.Template
	stats         *service.StatsService
	hub           *events.Hub
	sessionStore  *sessions.CookieStore
	adminPassword string
	keepAlive     time.Duration
	rateLimiter   *rateLimiter
	shutdownOnce  sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, stats *service.StatsService, hub *events.Hub, opts Options) *Server {
	mux := http.NewServeMux()

	secret := opts.SessionSecret
	if secret == "" {
		secret = "dev-secret"
	}
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   60 * 60 * 24 * 30,
		HttpOnly: true,
		Secure:   opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}

	keepAlive := opts.SSEKeepAlive
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		stats:         stats,
		hub:           hub,
		sessionStore:  store,
		adminPassword: opts.AdminPassword,
		keepAlive:     keepAlive,
		rateLimiter:   newRateLimiter(),
	}

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Tiny cache for static assets
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	// Event stream is long-lived and handles its own headers: the logging
	// wrapper would hold its completion log (and hide http.Flusher) for the
	// whole connection.
	mux.HandleFunc("/events", s.handleEvents)

	mux.HandleFunc("/admin", s.withSecurityHeaders(s.handleAdminPage))
	mux.HandleFunc("/admin/login", s.withSecurityHeaders(s.handleAdminLogin))
	mux.HandleFunc("/admin/logout", s.withSecurityHeaders(s.handleAdminLogout))

	mux.HandleFunc("/admin/team/rename", s.withSecurityHeaders(s.handleTeamRename))
	mux.HandleFunc("/admin/employee/add", s.withSecurityHeaders(s.handleEmployeeAdd))
	mux.HandleFunc("/admin/employee/rename", s.withSecurityHeaders(s.handleEmployeeRename))
	mux.HandleFunc("/admin/employee/delete", s.withSecurityHeaders(s.handleEmployeeDelete))
	mux.HandleFunc("/admin/employee/set_team", s.withSecurityHeaders(s.handleEmployeeSetTeam))
	mux.HandleFunc("/admin/result/update", s.withSecurityHeaders(s.handleResultUpdate))
	mux.HandleFunc("/admin/result/increment", s.withSecurityHeaders(s.handleResultIncrement))
	mux.HandleFunc("/admin/reset_all", s.withSecurityHeaders(s.handleResetAll))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit mutations only; page views stay unthrottled.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.stats.Teams(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// templateFuncs holds helpers available inside the embedded templates.
var templateFuncs = template.FuncMap{
	"fmtNum": formatNumber,
}

// formatNumber renders 1234567 as "1 234 567" for the scoreboard cells.
func formatNumber(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, d)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
