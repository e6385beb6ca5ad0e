package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/session"
	appweb "expensetracker/web"
)

// UserService is the account API the handlers need.
type UserService interface {
	Register(ctx context.Context, username, password string, budget core.Money) (core.User, error)
	Login(ctx context.Context, username, password string) (*core.User, error)
	Get(ctx context.Context, id int64) (core.User, error)
}

// ExpenseService is the expense API the handlers need.
type ExpenseService interface {
	AddExpense(ctx context.Context, user core.User, e core.Expense) (core.Expense, error)
	MonthSummary(ctx context.Context, user core.User, month, year int) (core.MonthSummary, error)
	RemainingBudget(ctx context.Context, user core.User, now time.Time) (core.MonthSummary, error)
}

// Pinger is checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds everything NewServer wires into the router.
type Deps struct {
	Users          UserService
	Expenses       ExpenseService
	Tokens         *session.Tokens
	DB             Pinger
	Logger         *applog.Logger
	CurrencySymbol string
	// Auth POSTs allowed per client per minute.
	LoginRateLimit int
}

type Server struct {
	http.Server
	templates *template.Template
	users     UserService
	expenses  ExpenseService
	tokens    *session.Tokens
	db        Pinger
	currency  string

	logger   *applog.Logger
	events   *applog.StructuredLogger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	started      time.Time
	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and builds the router, returning
// a ready-to-run http.Server.
func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.Users == nil || deps.Expenses == nil || deps.Tokens == nil {
		return nil, errors.New("http: users, expenses and tokens are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		users:    deps.Users,
		expenses: deps.Expenses,
		tokens:   deps.Tokens,
		db:       deps.DB,
		currency: deps.CurrencySymbol,
		logger:   logger,
		events:   applog.NewStructuredLogger(logger),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.LoginRateLimit,
		}),
		detector: security.NewDetector(),
		started:  time.Now(),
		now:      time.Now,
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	t, err := template.New("").Funcs(s.templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.limiter.Stop()
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = t

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		s.limiter.Stop()
		return nil, fmt.Errorf("mount static assets: %w", err)
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(static),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(static fs.FS) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(s.tracer.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware)

	r.With(security.StaticAssetMiddleware(3600)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	limited := s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)
	r.Get("/", s.handleIndex)
	r.With(limited).Post("/login", s.handleLogin)
	r.With(limited).Post("/register", s.handleRegister)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Use(security.NoStore)

		r.Get("/expenses/new", s.handleNewExpense)
		r.Post("/expenses", s.handleCreateExpense)
		r.Get("/expenses/monthly", s.handleMonthly)
		r.Get("/expenses/export", s.handleExport)
		r.Get("/budget", s.handleBudget)
		r.Get("/profile", s.handleProfile)
	})

	return r
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money":     func(m core.Money) string { return m.Format(s.currency) },
		"monthName": core.MonthName,
	}
}

// page is the data every full-page template receives.
type page struct {
	Title   string
	Active  string
	Session *session.Session
	Flash   string
	Error   string
	Data    any
}

// render executes name into a buffer first so template errors still produce
// a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, p); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err, "template", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// redirect navigates the browser to url, via HX-Redirect for htmx requests.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isHTMX(r) {
		RedirectFragment(url).Write(w)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded", applog.FieldClientIP, s.detector.ExtractClientIP(r), applog.FieldPath, r.URL.Path)
	ErrorFragment(http.StatusTooManyRequests, "Too many attempts. Please try again later.").Write(w)
}

// Shutdown stops the rate limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
