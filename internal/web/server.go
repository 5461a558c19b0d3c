// Package web provides the HTTP server and handlers for the list screens.
package web

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/fulfillment/internal/config"
	"github.com/JonMunkholm/fulfillment/internal/core"
	"github.com/JonMunkholm/fulfillment/internal/grid"
	"github.com/JonMunkholm/fulfillment/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Content-Security-Policy for every page. Inline styles carry column widths;
// scripts come from /static and the pinned htmx release.
const contentSecurityPolicy = "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:"

// Server is the HTTP server for the list screens.
type Server struct {
	cfg     *config.Config
	source  core.RecordSource
	exports *core.ExportLimiter
	mounts  *Mounts
	logger  *slog.Logger
	router  chi.Router
	server  *http.Server
}

// NewServer wires the router. source fetches page records; exports bounds
// concurrent spreadsheet exports and is created from cfg when nil.
func NewServer(cfg *config.Config, source core.RecordSource, exports *core.ExportLimiter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if exports == nil {
		exports = core.NewExportLimiter(cfg.Export.MaxConcurrent, cfg.Export.MaxWaitTime)
	}

	exporter := grid.NewExporter(grid.ExportOptions{
		Prefix:        cfg.Export.Prefix,
		IncludeHidden: cfg.Export.IncludeHidden,
	})

	s := &Server{
		cfg:     cfg,
		source:  source,
		exports: exports,
		mounts:  NewMounts(cfg.Table.MountTTL, cfg.Security.SecureCookies, exporter),
		logger:  logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(
		chimw.RequestID,
		middleware.TrustedRealIP(s.cfg.Security.TrustedProxies),
		middleware.Logger,
		chimw.Recoverer,
		chimw.Compress(5),
		securityHeaders(s.cfg.Security.EnableCSP),
	)
	if t := s.cfg.Server.RequestTimeout; t > 0 {
		r.Use(chimw.Timeout(t))
	}
	if s.cfg.Rate.Enabled {
		r.Use(newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute).middleware)
	}

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Get("/", s.handleDashboard)

	r.Route("/t/{page}", func(r chi.Router) {
		r.Get("/", s.handleTableView)
		r.Post("/search", s.handleSearch)
		r.Post("/filters", s.handleFilters)
		r.Post("/filters/reset", s.handleResetFilters)
		r.Post("/next", s.handleNext)
		r.Post("/columns", s.handleColumns)

		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				r.Use(newRateLimiter(s.cfg.Rate.ExportLimit, time.Minute).middleware)
			}
			r.Get("/export", s.handleExport)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(&s.cfg.Security))
		r.Get("/pages", s.handleListPages)
		r.Get("/pages/{page}/rows", s.handlePageRows)
		r.Get("/status", s.handleStatus)
	})

	return r
}

// Start listens on the configured address and serves until Shutdown. Idle
// sessions are swept until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr())
	if err != nil {
		return err
	}

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	go s.mounts.StartSweeper(ctx, s.logger)

	s.logger.Info("starting server", "addr", ln.Addr().String())
	return s.server.Serve(ln)
}

// Shutdown stops accepting requests, then waits for running exports.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.exports.WaitForDrain(ctx)
}

// Router exposes the handler tree for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				h.Set("Content-Security-Policy", contentSecurityPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}
