// Package http implements the REST API for the campus hub: catalog reads,
// student signup and registration, and the conversational agent endpoints.
package http

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/campus-hub/clubevent-hub/config"
	"github.com/campus-hub/clubevent-hub/internal/application/assistant"
	"github.com/campus-hub/clubevent-hub/internal/application/command"
	"github.com/campus-hub/clubevent-hub/internal/application/query"
	"github.com/campus-hub/clubevent-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Host - address to bind (default: "0.0.0.0").
	Host string

	// Port - port to listen on (default: 8080).
	Port int

	// ReadTimeout - maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout - maximum duration for writing the response.
	// Agent endpoints wait on the model backend, so this is generous.
	WriteTimeout time.Duration

	// IdleTimeout - maximum duration for idle connections.
	IdleTimeout time.Duration

	// MaxHeaderBytes - maximum size of request headers.
	MaxHeaderBytes int
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   2 * time.Minute,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}
}

// Address returns the server address string.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Dependencies contains everything the HTTP handlers need.
type Dependencies struct {
	// Query handlers (CQRS read side)
	Recommendations *query.GetRecommendationsHandler
	SimilarStudents *query.FindSimilarStudentsHandler
	SearchEvents    *query.SearchEventsHandler
	TrendingEvents  *query.GetTrendingEventsHandler

	// Command handlers (CQRS write side)
	Signup        *command.SignupStudentHandler
	RegisterEvent *command.RegisterForEventHandler
	UpdateProfile *command.UpdateProfileHandler

	// Agent facade
	Assistant *assistant.Assistant

	// Features gates optional surfaces per student; nil enables everything.
	Features *config.FeatureFlags

	// HealthCheck reports backing-store health; nil checks nothing.
	HealthCheck func(ctx context.Context) error

	// Logger for structured logging.
	Logger *logger.Logger
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server is the campus hub HTTP server.
type Server struct {
	config Config
	deps   Dependencies
	log    *logger.Logger
	server *http.Server
}

// NewServer creates a Server with all routes registered.
func NewServer(config Config, deps Dependencies) *Server {
	log := deps.Logger
	if log == nil {
		log = logger.Default()
	}

	s := &Server{config: config, deps: deps, log: log}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.server = &http.Server{
		Addr:           config.Address(),
		Handler:        s.withMiddleware(mux),
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		IdleTimeout:    config.IdleTimeout,
		MaxHeaderBytes: config.MaxHeaderBytes,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Catalog
	mux.HandleFunc("GET /api/events/search", s.handleSearchEvents)
	mux.HandleFunc("GET /api/events/trending", s.handleTrendingEvents)

	// Students
	mux.HandleFunc("POST /api/students", s.handleSignup)
	mux.HandleFunc("PATCH /api/students/{id}/profile", s.handleUpdateProfile)
	mux.HandleFunc("GET /api/students/{id}/recommendations", s.handleRecommendations)
	mux.HandleFunc("GET /api/students/{id}/similar", s.handleSimilarStudents)
	mux.HandleFunc("POST /api/students/{id}/registrations", s.handleRegisterEvent)

	// Agent endpoints
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/clubs/{id}/chat", s.handleClubChat)
	mux.HandleFunc("POST /api/students/{id}/onboarding", s.handleOnboarding)
	mux.HandleFunc("GET /api/students/{id}/recommendations/explained", s.handleExplainedRecommendations)
	mux.HandleFunc("POST /api/search", s.handleAgentSearch)
}

// Start begins serving. It blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info("http server listening", logger.String("addr", s.config.Address()))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("http server shutting down")
	return s.server.Shutdown(ctx)
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return s.recoverPanics(s.logRequests(next))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request handled",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Latency(time.Since(start)),
		)
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("panic in handler",
					logger.String("path", r.URL.Path),
					logger.Any("panic", rec),
					logger.String("stack", string(debug.Stack())),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
