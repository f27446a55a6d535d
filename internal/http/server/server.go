// Package server assembles the HTTP view: router, middleware, the student
// routes, the live websocket feed, health and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/form"
	"github.com/aanand-mishra/student-records/internal/http/handlers/live"
	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/http/middleware"
	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// Store is what the HTTP view needs from the record store.
type Store interface {
	form.Recorder
	Subscribe(records.Listener)
}

// Server is the HTTP view.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	hub        *live.Hub
	config     *config.Config
	logger     *zap.Logger
}

// New builds the server. Nothing listens until Start.
func New(cfg *config.Config, logger *zap.Logger, store Store) *Server {
	s := &Server{
		router: mux.NewRouter(),
		config: cfg,
		logger: logger,
	}

	s.setupMiddleware()
	s.setupRoutes(store)

	s.httpServer = &http.Server{
		Addr:              cfg.HTTPServer.Addr,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	// First listed runs outermost.
	chain := []middleware.Middleware{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
	}
	if s.config.HTTPServer.Metrics {
		chain = append(chain, middleware.Metrics())
	}
	chain = append(chain, middleware.Logging(s.logger))

	s.router.Use(mux.MiddlewareFunc(middleware.Chain(chain...)))
}

// Route table:
//
//	POST   /api/students          → append a student
//	GET    /api/students          → the whole list
//	GET    /api/students/{index}  → one record
//	PUT    /api/students/{index}  → replace a record
//	DELETE /api/students/{index}  → remove a record
//	GET    /ws                    → live snapshots
//	GET    /health                → liveness
//	GET    /metrics               → Prometheus, when enabled
func (s *Server) setupRoutes(store Store) {
	const collection = "/api/students"
	const item = collection + "/{" + student.IndexVar + "}"

	s.router.HandleFunc(collection, student.New(store, s.logger)).Methods(http.MethodPost)
	s.router.HandleFunc(collection, student.GetList(store, s.logger)).Methods(http.MethodGet)
	s.router.HandleFunc(item, student.GetByIndex(store, s.logger)).Methods(http.MethodGet)
	s.router.HandleFunc(item, student.Update(store, s.logger)).Methods(http.MethodPut)
	s.router.HandleFunc(item, student.Delete(store, s.logger)).Methods(http.MethodDelete)

	s.hub = live.NewHub(store, s.logger)
	s.router.Handle("/ws", s.hub).Methods(http.MethodGet)

	s.router.HandleFunc("/health", health).Methods(http.MethodGet)

	if s.config.HTTPServer.Metrics {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
}

func health(w http.ResponseWriter, _ *http.Request) {
	_ = response.WriteJSON(w, http.StatusOK, map[string]string{"status": response.StatusOK})
}

// Start listens and serves until Shutdown. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("server started",
		zap.String("address", s.config.HTTPServer.Addr),
		zap.Bool("metrics", s.config.HTTPServer.Metrics),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown drops websocket clients, then waits for in-flight requests up
// to ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	s.hub.Close()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

var _ Store = (*records.Store)(nil)
