// Package web provides the HTTP server and JSON API for the CSV editor.
//
// The API is the presentation-layer boundary: one snapshot endpoint, one
// mutation endpoint per user action, schema/SQL endpoints, and the two
// remote operations (volume upload, warehouse execution). All calls are
// synchronous request/response.
package web

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/config"
	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/core"
	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/databricks"
	custommw "github.com/bkuan/databrick-apps-csv-uploader-app/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for the CSV editor application.
type Server struct {
	service *core.Service
	remote  *databricks.Client // nil when no workspace is configured
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server. remote may be nil; upload and execute
// endpoints then fail with a configuration error.
func NewServer(service *core.Service, remote *databricks.Client, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		remote:  remote,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(custommw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(custommw.APIKeyAuth(&s.cfg.Security))

		// Session lifecycle
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{sessionID}", s.handleGetSession)
		r.Delete("/sessions/{sessionID}", s.handleDeleteSession)
		r.Post("/sessions/{sessionID}/reparse", s.handleReparse)

		// Edits: one mutation per user action
		r.Post("/sessions/{sessionID}/cell", s.handleSetCell)
		r.Post("/sessions/{sessionID}/rows", s.handleAddRow)
		r.Delete("/sessions/{sessionID}/rows/{rowIndex}", s.handleDeleteRow)
		r.Post("/sessions/{sessionID}/columns", s.handleAddColumn)
		r.Delete("/sessions/{sessionID}/columns/{column}", s.handleDeleteColumn)
		r.Post("/sessions/{sessionID}/columns/{column}/rename", s.handleRenameColumn)
		r.Post("/sessions/{sessionID}/header", s.handleToggleHeader)
		r.Post("/sessions/{sessionID}/undo", s.handleUndo)
		r.Post("/sessions/{sessionID}/revert", s.handleRevert)

		// Schema and SQL
		r.Get("/sessions/{sessionID}/schema", s.handleInferSchema)
		r.Post("/sessions/{sessionID}/sql", s.handleGenerateSQL)

		// Remote operations
		r.Post("/sessions/{sessionID}/upload", s.handleUploadVolume)
		r.Post("/sessions/{sessionID}/execute", s.handleExecuteSQL)
	})
}

// Start begins listening for HTTP requests.
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

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// handleHealth reports liveness plus the number of live edit sessions.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":   "ok",
		"sessions": s.service.SessionCount(),
	})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1,
			lastReset: time.Now(),
		}
		return true
	}

	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			w.Header().Set("Retry-After", "60")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":"rate limit exceeded","code":"RATE001"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}
