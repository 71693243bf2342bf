package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"kopimakmur/internal/auth"
	applog "kopimakmur/internal/log"
	"kopimakmur/internal/middleware/ratelimit"
	"kopimakmur/internal/middleware/security"
	"kopimakmur/internal/middleware/trace"
	"kopimakmur/internal/services"
	appweb "kopimakmur/web"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// staticMaxAge is the Cache-Control max-age of embedded assets, in seconds.
const staticMaxAge = 3600

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the server dispatches to.
type Deps struct {
	Ledger   *services.Ledger
	Users    *services.Users
	Products *services.Products
	Auth     *auth.Authenticator
	Sessions *auth.SessionManager
	Ready    Pinger
	Logger   *applog.Logger
	Now      func() time.Time // defaults to time.Now

	LoginRateLimit int      // login POSTs per minute per client
	CookieSecure   bool     // Secure flag on the flash cookie
	TrustedProxies []string // CIDRs whose X-Forwarded-For is honoured
}

type Server struct {
	http.Server
	templates *template.Template
	deps      Deps
	limiter   *ratelimit.Limiter
	detector  *security.Detector

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires routes and middleware.
func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	detector := security.NewDetector()
	for _, cidr := range deps.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", cidr, err)
		}
	}

	s := &Server{
		templates: t,
		deps:      deps,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.LoginRateLimit,
		}),
		detector: detector,
	}

	mux := http.NewServeMux()
	if err := s.routes(mux); err != nil {
		s.limiter.Stop()
		return nil, err
	}

	var handler http.Handler = mux
	handler = applog.Middleware(deps.Logger, trace.GetRequestID)(handler)
	handler = detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(detector.ExtractClientIP).Middleware(handler)

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) error {
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("GET /static/", security.StaticAssetMiddleware(staticMaxAge)(static))

	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	loginLimit := s.limiter.Middleware(s.detector.ExtractClientIP, s.handleLoginLimited, http.MethodPost)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.Handle("POST /login", loginLimit(http.HandlerFunc(s.handleLogin)))
	mux.HandleFunc("GET /logout", s.handleLogout)

	mux.HandleFunc("GET /admin/dashboard", s.page(auth.Administer, s.handleAdminDashboard))
	mux.HandleFunc("GET /viewonly", s.page(auth.ViewLedger, s.handleViewOnly))

	mux.HandleFunc("GET /cashflow", s.page(auth.ViewLedger, s.handleCashflow))
	mux.HandleFunc("POST /cashflow/add", s.page(auth.EditLedger, s.handleAddTransaction))
	mux.HandleFunc("GET /cashflow/edit/{id}", s.page(auth.EditLedger, s.handleEditTransaction))
	mux.HandleFunc("POST /cashflow/update/{id}", s.page(auth.EditLedger, s.handleUpdateTransaction))
	mux.HandleFunc("POST /delete_transaction/{id}", s.mutation(auth.EditLedger, s.handleDeleteTransaction))

	mux.HandleFunc("GET /laporan", s.page(auth.ViewReports, s.handleReport))
	mux.HandleFunc("GET /export/excel", s.page(auth.ViewReports, s.handleExportExcel))
	mux.HandleFunc("GET /export/pdf", s.page(auth.ViewReports, s.handleExportPDF))

	mux.HandleFunc("GET /users", s.page(auth.Administer, s.handleUsers))
	mux.HandleFunc("POST /users/add", s.page(auth.Administer, s.handleAddUser))
	mux.HandleFunc("POST /users/edit", s.page(auth.Administer, s.handleEditUser))
	mux.HandleFunc("POST /delete_user/{id}", s.mutation(auth.Administer, s.handleDeleteUser))

	mux.HandleFunc("GET /products", s.page(auth.Administer, s.handleProducts))
	mux.HandleFunc("POST /products/add", s.page(auth.Administer, s.handleAddProduct))
	mux.HandleFunc("POST /products/edit", s.page(auth.Administer, s.handleEditProduct))
	mux.HandleFunc("POST /delete_product/{id}", s.mutation(auth.Administer, s.handleDeleteProduct))

	mux.HandleFunc("GET /api/dashboard-stats", s.api(s.handleDashboardStats))
	mux.HandleFunc("GET /api/expense-distribution", s.api(s.handleExpenseDistribution))
	mux.HandleFunc("GET /api/cashflow-trend", s.api(s.handleCashflowTrend))

	mux.HandleFunc("/", s.handleNotFound)
	return nil
}

func (s *Server) clock() time.Time {
	return s.deps.Now()
}

// Shutdown stops the login limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{
		"status":    "healthy",
		"timestamp": nowRFC3339(),
		"version":   Version,
	}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		ctx, cancel := withReadTimeout(r)
		defer cancel()
		if err := s.deps.Ready.Ping(ctx); err != nil {
			slog.WarnContext(r.Context(), "Readiness check failed", "error", err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	p, _ := s.principal(r)
	s.render(w, r, http.StatusNotFound, "404.html", pageData{
		Title: "Halaman tidak ditemukan",
		User:  p,
	})
}
