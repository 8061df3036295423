// Package api provides the HTTP REST API and WebSocket server for Kinesis
// Core.
//
// It exposes the installation's status, preset and script control, session
// history, and a real-time status stream to operator consoles. Safety
// actions are never gated on authentication: stop, status, and health stay
// open while mutating endpoints require an operator token.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lanternworks/kinesis-core/internal/control"
	"github.com/lanternworks/kinesis-core/internal/infrastructure/config"
	"github.com/lanternworks/kinesis-core/internal/infrastructure/logging"
	"github.com/lanternworks/kinesis-core/internal/preset"
	"github.com/lanternworks/kinesis-core/internal/script"
	"github.com/lanternworks/kinesis-core/internal/sessionlog"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// statusBroadcastInterval is how often the status stream is re-evaluated for
// WebSocket broadcast.
const statusBroadcastInterval = 250 * time.Millisecond

// Controller is the subset of the control engine the API drives.
type Controller interface {
	ApplyPreset(name string) error
	RequestStop()
	LoadScript(s script.Script) error
	Status() control.StatusSnapshot
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	WS         config.WebSocketConfig
	Security   config.SecurityConfig
	Logger     *logging.Logger
	Engine     Controller
	Library    *preset.Library
	PresetRepo preset.Repository     // optional: custom preset persistence
	Sessions   sessionlog.Repository // optional: session history queries
	Version    string
}

// Server is the HTTP API server for Kinesis Core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub. The
// server is created with New() and started with Start().
type Server struct {
	cfg        config.APIConfig
	wsCfg      config.WebSocketConfig
	secCfg     config.SecurityConfig
	logger     *logging.Logger
	engine     Controller
	library    *preset.Library
	presetRepo preset.Repository
	sessions   sessionlog.Repository
	version    string

	server *http.Server
	hub    *Hub
	cancel context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("control engine is required")
	}
	if deps.Library == nil {
		return nil, fmt.Errorf("preset library is required")
	}

	return &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		secCfg:     deps.Security,
		logger:     deps.Logger,
		engine:     deps.Engine,
		library:    deps.Library,
		presetRepo: deps.PresetRepo,
		sessions:   deps.Sessions,
		version:    deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub and the status broadcast
// loop, and launches the HTTP listener in a background goroutine. The server
// can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)
	go s.broadcastStatusLoop(srvCtx)

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", s.server.Addr)
	return nil
}

// broadcastStatusLoop pushes status snapshots to WebSocket clients whenever
// the snapshot changes. Elapsed-time fields change every interval while a
// session runs, which is the desired live feed.
func (s *Server) broadcastStatusLoop(ctx context.Context) {
	ticker := time.NewTicker(statusBroadcastInterval)
	defer ticker.Stop()

	var last control.StatusSnapshot
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := s.engine.Status()
			if snap == last {
				continue
			}
			last = snap
			s.hub.Broadcast("status", snap)
		}
	}
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete, then
// forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
