package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"
)

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Host           string        // Host to bind to (default "localhost")
	Port           int           // Port to listen on (default 8080)
	ReadTimeout    time.Duration // Read timeout (default 30s)
	WriteTimeout   time.Duration // Write timeout (default 30s); replay streams clear it
	IdleTimeout    time.Duration // Idle timeout (default 60s)
	MaxFastWorkers int           // Max concurrent fast operations (default 100)
	MaxSlowWorkers int           // Max concurrent replay streams (default 4)
}

// DefaultConfig returns a ServerConfig with sensible defaults.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Host:           "localhost",
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxFastWorkers: 100,
		MaxSlowWorkers: 4,
	}
}

// Server is the HTTP API server.
type Server struct {
	config   ServerConfig
	store    *SessionStore
	handlers *Handlers
	server   *http.Server
	pool     *WorkerPool
	version  string
}

// NewServer creates a new API server.
func NewServer(store *SessionStore, config ServerConfig, version string) *Server {
	poolConfig := PoolConfig{
		MaxFastWorkers: config.MaxFastWorkers,
		MaxSlowWorkers: config.MaxSlowWorkers,
	}
	pool := NewWorkerPool(poolConfig)
	handlers := NewHandlersWithPool(store, version, pool)

	return &Server{
		config:   config,
		store:    store,
		handlers: handlers,
		pool:     pool,
		version:  version,
	}
}

// Pool returns the worker pool for monitoring.
func (s *Server) Pool() *WorkerPool {
	return s.pool
}

// Sessions returns the session store.
func (s *Server) Sessions() *SessionStore {
	return s.store
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs all requests.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// recoverMiddleware turns a handler panic into a 500 response.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				log.Printf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, v, debug.Stack())
				writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()
	h := s.handlers

	mux.HandleFunc("GET /api/health", h.Health)

	// Game sessions
	mux.HandleFunc("POST /api/games", h.CreateGame)
	mux.HandleFunc("GET /api/games/{id}", h.GetGame)
	mux.HandleFunc("DELETE /api/games/{id}", h.DeleteGame)
	mux.HandleFunc("POST /api/games/{id}/move", h.Move)
	mux.HandleFunc("POST /api/games/{id}/click", h.Click)
	mux.HandleFunc("POST /api/games/{id}/undo", h.Undo)
	mux.HandleFunc("POST /api/games/{id}/reset", h.Reset)
	mux.HandleFunc("POST /api/games/{id}/scores/clear", h.ClearScores)

	// Replay and records
	mux.HandleFunc("GET /api/games/{id}/replay", h.Replay)
	mux.HandleFunc("POST /api/games/{id}/replay/cancel", h.CancelReplay)
	mux.HandleFunc("GET /api/games/{id}/record", h.GetRecord)
	mux.HandleFunc("PUT /api/games/{id}/record", h.PutRecord)

	mux.HandleFunc("/api/games/{id}/ws", h.WebSocket)

	// Apply middleware
	return corsMiddleware(loggingMiddleware(recoverMiddleware(mux)))
}

// httpServer builds the underlying http.Server and logs the endpoints.
func (s *Server) httpServer() *http.Server {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	log.Printf("Starting gomoku3d API server v%s on %s", s.version, addr)
	log.Printf("Endpoints:")
	log.Printf("  GET    /api/health                  - Health check")
	log.Printf("  POST   /api/games                   - New game")
	log.Printf("  GET    /api/games/{id}              - Game state")
	log.Printf("  DELETE /api/games/{id}              - End game")
	log.Printf("  POST   /api/games/{id}/move         - Place a stone")
	log.Printf("  POST   /api/games/{id}/click        - Place a stone by pointer click")
	log.Printf("  POST   /api/games/{id}/undo         - Take back the last stone")
	log.Printf("  POST   /api/games/{id}/reset        - Clear the board")
	log.Printf("  GET    /api/games/{id}/replay       - Replay the game (SSE)")
	log.Printf("  GET    /api/games/{id}/record       - Export SGF")
	log.Printf("  PUT    /api/games/{id}/record       - Import SGF")
	log.Printf("  WS     /api/games/{id}/ws           - WebSocket for live play")

	return &http.Server{
		Addr:         addr,
		Handler:      s.setupRoutes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = s.httpServer()
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// ListenAndServe runs the server until ctx is done, then shuts it down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = s.httpServer()
	srv := s.server

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Printf("Shutting down API server...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("API server stopped gracefully")
	return nil
}
