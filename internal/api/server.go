// Package api exposes the downloader over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ytfetch/internal/delivery"
	"ytfetch/internal/downloader"
	"ytfetch/internal/logger"
	"ytfetch/internal/ytdl"
	"ytfetch/pkg/models"
)

var (
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrServerNotRunning     = errors.New("server is not running")
)

// Server represents the HTTP server
type Server struct {
	config       *models.Config
	orchestrator *downloader.Orchestrator
	gateway      *delivery.Gateway
	ytdl         *ytdl.Manager
	version      string
	router       *chi.Mux
	server       *http.Server
	listener     net.Listener
	running      bool
	mu           sync.RWMutex
}

// ServerOption configures optional Server collaborators
type ServerOption func(*Server)

// WithYtdlManager reports the managed yt-dlp install on /api/status
func WithYtdlManager(m *ytdl.Manager) ServerOption {
	return func(s *Server) {
		s.ytdl = m
	}
}

// WithVersion sets the version reported on /api/status
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// NewServer creates a new HTTP server
func NewServer(config *models.Config, orchestrator *downloader.Orchestrator, gateway *delivery.Gateway, opts ...ServerOption) *Server {
	s := &Server{
		config:       config,
		orchestrator: orchestrator,
		gateway:      gateway,
		version:      "dev",
		router:       chi.NewRouter(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()

	return s
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Route("/api", func(r chi.Router) {
		// downloads block until yt-dlp finishes, so no request timeout here
		r.Post("/download", s.handleDownload)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Get("/health", s.handleHealth)
			r.Get("/status", s.handleStatus)
			r.Get("/files", s.handleListFiles)
		})
	})

	s.router.Get("/files/*", s.handleFile)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrServerAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.GetAddr())
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.server = httpServer
	s.running = true

	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	logger.Info("server listening", "addr", listener.Addr().String())
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrServerNotRunning
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.running = false
	s.server = nil
	s.listener = nil

	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// GetAddr returns the configured listen address
func (s *Server) GetAddr() string {
	return net.JoinHostPort(s.config.ServerHost, strconv.Itoa(s.config.ServerPort))
}

// GetActualAddr returns the actual listening address (useful when port is 0)
func (s *Server) GetActualAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}

	return s.GetAddr()
}

// handleHealth handles health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleStatus handles status endpoint
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	running := s.running
	s.mu.RUnlock()

	libraryCount := 0
	if files, err := s.gateway.List(); err == nil {
		libraryCount = len(files)
	} else {
		logger.FromContext(r.Context()).Warn("failed to list library", "error", err)
	}

	ytdlp := map[string]interface{}{
		"path": s.config.YtdlPath,
	}
	if s.ytdl != nil {
		ytdlp["path"] = s.ytdl.ResolveExecutable(s.config.YtdlPath)
		ytdlp["installed"] = s.ytdl.IsInstalled()
		ytdlp["version"] = s.ytdl.GetCurrentVersion()
	}

	response := map[string]interface{}{
		"running":             running,
		"version":             s.version,
		"transcoderAvailable": s.orchestrator.TranscoderAvailable(),
		"ytdlp":               ytdlp,
		"outputDir":           s.config.OutputDir,
		"servableDirs":        s.gateway.Roots(),
		"libraryCount":        libraryCount,
	}

	writeJSON(w, http.StatusOK, response)
}
