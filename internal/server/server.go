// Package server exposes the deidentification engine over HTTP with a
// websocket feed of processing events.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/raaihank/deidentify/internal/config"
	"github.com/raaihank/deidentify/internal/logger"
	"github.com/raaihank/deidentify/internal/privacy"
	"github.com/raaihank/deidentify/internal/websocket"
	"go.uber.org/zap"
)

const (
	statusInterval  = 10 * time.Second
	cleanupInterval = 30 * time.Minute
	clientIdleTTL   = time.Hour
)

// Engine is the engine surface the server needs
type Engine interface {
	Process(text, documentID string) privacy.ProcessResult
	Stats() privacy.Stats
	EnabledCategories() []string
}

// Server represents the HTTP API server
type Server struct {
	config  *config.Config
	logger  *logger.Logger
	version string
	started time.Time

	// engine is not goroutine-safe; every call holds engineMu
	engine   Engine
	engineMu sync.Mutex

	router  *mux.Router
	server  *http.Server
	wsHub   *websocket.Hub
	limiter *RateLimiter
}

// New creates a new server instance around engine
func New(cfg *config.Config, engine Engine, log *logger.Logger, version string) *Server {
	rl := cfg.Server.RateLimit

	s := &Server{
		config:  cfg,
		logger:  log.WithComponent("server"),
		version: version,
		started: time.Now(),
		engine:  engine,
		router:  mux.NewRouter(),
		wsHub:   websocket.NewHub(cfg.WebSocket, log.WithComponent("websocket").Logger),
		limiter: NewRateLimiter(rl.Enabled, rl.RequestsPerMin, rl.Burst),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/info", s.handleInfo).Methods(http.MethodGet)

	// Upgrades need the raw ResponseWriter, so the websocket route skips
	// the logging wrapper
	if s.config.WebSocket.Enabled {
		s.router.HandleFunc(s.config.WebSocket.Path, s.wsHub.HandleWebSocket).Methods(http.MethodGet)
	}

	// Registered on the root router so a method mismatch answers 405
	s.router.Handle("/v1/deidentify", s.apiHandler(s.handleDeidentify)).Methods(http.MethodPost)
	s.router.Handle("/v1/stats", s.apiHandler(s.handleStats)).Methods(http.MethodGet)
}

// apiHandler wraps an API endpoint with request logging and rate limiting
func (s *Server) apiHandler(h http.HandlerFunc) http.Handler {
	return s.loggingMiddleware(s.rateLimitMiddleware(h))
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub for broadcasting events
func (s *Server) Hub() *websocket.Hub {
	return s.wsHub
}

// Start runs the server until ctx is cancelled or listening fails
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting deidentify server",
		zap.Int("port", s.config.Server.Port),
		zap.Bool("websocket", s.config.WebSocket.Enabled),
		zap.Bool("rate_limit", s.config.Server.RateLimit.Enabled),
	)

	go s.wsHub.Run(ctx)
	go s.backgroundLoop(ctx)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping deidentify server")
	return s.server.Shutdown(ctx)
}

// backgroundLoop broadcasts system status and prunes idle rate limit clients
func (s *Server) backgroundLoop(ctx context.Context) {
	status := time.NewTicker(statusInterval)
	cleanup := time.NewTicker(cleanupInterval)
	defer status.Stop()
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-status.C:
			s.wsHub.BroadcastEvent(s.statusEvent())
		case now := <-cleanup.C:
			if n := s.limiter.Cleanup(now.Add(-clientIdleTTL)); n > 0 {
				s.logger.Debug("Pruned idle rate limit clients", zap.Int("removed", n))
			}
		}
	}
}

func (s *Server) statusEvent() websocket.Event {
	return websocket.Event{
		Type:      websocket.EventTypeSystemStatus,
		Timestamp: time.Now(),
		Data: websocket.SystemStatusEvent{
			Status:           "running",
			Uptime:           time.Since(s.started).Round(time.Second).String(),
			Engine:           s.engineStats(),
			ConnectedClients: int(s.wsHub.GetStats().ActiveConnections),
		},
	}
}
