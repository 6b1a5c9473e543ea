// Package web serves the audit engine over HTTP: load a dataset into a
// session, audit and profile it, apply cleaning steps and render a report.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/crashaudit/internal/config"
	"github.com/JonMunkholm/crashaudit/internal/metrics"
	"github.com/JonMunkholm/crashaudit/internal/session"
	"github.com/JonMunkholm/crashaudit/internal/source/postgres"
	"github.com/JonMunkholm/crashaudit/internal/web/middleware"
)

// Deps are the collaborators a Server needs. Source may be nil when no
// database is configured.
type Deps struct {
	Sessions *session.Manager
	Limiter  *session.LoadLimiter
	Source   *postgres.Source
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// Server is the HTTP server for the audit API.
type Server struct {
	cfg      *config.Config
	sessions *session.Manager
	limiter  *session.LoadLimiter
	source   *postgres.Source
	metrics  *metrics.Metrics
	now      func() time.Time

	router *chi.Mux
	server *http.Server
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:      cfg,
		sessions: deps.Sessions,
		limiter:  deps.Limiter,
		source:   deps.Source,
		metrics:  deps.Metrics,
		now:      deps.Now,
		router:   chi.NewRouter(),
	}
	if s.sessions == nil {
		s.sessions = session.NewManager()
	}
	if s.limiter == nil {
		s.limiter = session.NewLoadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	if s.cfg.Security.RateLimit > 0 {
		s.router.Use(middleware.NewRateLimiter(s.cfg.Security.RateLimit, s.cfg.Security.RateWindow, nil).Handler)
	}
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Metrics(s.metrics))
	s.router.Use(chimw.Recoverer)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", s.metrics.Handler())
	s.router.Get("/sessions/{sessionID}/report", s.withSession(s.handleReportPage))

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.Security.RequireAPIKey, s.cfg.Security.APIKeys))

		r.Get("/datasets", s.handleListDatasets)

		r.Get("/sessions", s.handleListSessions)
		r.Post("/sessions", s.handleUpload)
		r.Post("/sessions/query", s.handleQueryLoad)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.withSession(s.handleGetSession))
			r.Delete("/", s.handleDeleteSession)

			r.Get("/profile", s.withSession(s.handleProfile))
			r.Get("/dictionary", s.withSession(s.handleDictionary))
			r.Get("/snapshot", s.withSession(s.handleSnapshot))
			r.Get("/export", s.withSession(s.handleExport))

			r.Get("/audit", s.withSession(s.handleAudit))
			r.Get("/insight", s.withSession(s.handleInsight))
			r.Get("/history", s.withSession(s.handleHistory))

			r.Route("/clean", func(r chi.Router) {
				r.Post("/impute", s.withSession(s.handleImpute))
				r.Post("/dedupe", s.withSession(s.handleDropDuplicates))
				r.Post("/standardize", s.withSession(s.handleStandardize))
				r.Post("/drop-missing", s.withSession(s.handleDropMissing))
				r.Post("/fill", s.withSession(s.handleFillMissing))
				r.Post("/filter-year", s.withSession(s.handleFilterYear))
			})
		})
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests, then waits for in-flight loads.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return s.limiter.Drain(ctx)
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.limiter.Drain(ctx)
}

// Router returns the chi router, for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
