// Package httpapi exposes the roadmap services over authenticated JSON HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/example/questline/internal/metrics"
	"github.com/example/questline/internal/ports/primary"
)

const shutdownTimeout = 10 * time.Second

// Config holds transport settings.
type Config struct {
	JWTSecret             string
	GenerateRatePerMinute int
}

// Server routes HTTP requests to the application services.
type Server struct {
	roadmaps primary.RoadmapService
	profiles primary.ProfileService
	logger   logrus.FieldLogger
	auth     *Authenticator
	limiter  *RateLimiter
	router   *mux.Router
}

// NewServer builds the router. A JWT secret is required.
func NewServer(cfg Config, roadmaps primary.RoadmapService, profiles primary.ProfileService, logger logrus.FieldLogger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("http.jwt_secret is required to serve the API")
	}

	s := &Server{
		roadmaps: roadmaps,
		profiles: profiles,
		logger:   logger,
		auth:     NewAuthenticator([]byte(cfg.JWTSecret), logger),
		limiter:  NewRateLimiter(cfg.GenerateRatePerMinute, logger),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestContext)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "route not found", Code: "NOT_FOUND"})
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.auth.Handler)

	api.Handle("/roadmap/generate", s.limiter.Handler(http.HandlerFunc(s.handleGenerate))).Methods(http.MethodPost)
	api.HandleFunc("/roadmap/start-node", s.handleStartNode).Methods(http.MethodPost)
	api.HandleFunc("/roadmap/complete-node", s.handleCompleteNode).Methods(http.MethodPost)
	api.HandleFunc("/roadmap", s.handleListRoadmaps).Methods(http.MethodGet)
	api.HandleFunc("/roadmap/", s.handleListRoadmaps).Methods(http.MethodGet)
	api.HandleFunc("/roadmap/{id}", s.handleGetRoadmap).Methods(http.MethodGet)
	api.HandleFunc("/profile/me", s.handleProfile).Methods(http.MethodGet)

	return r
}

// Handler returns the instrumented root handler.
func (s *Server) Handler() http.Handler {
	return metrics.InstrumentHandler(s.router)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
