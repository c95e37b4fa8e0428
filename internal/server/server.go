// Package server exposes the signal, authority, mindshare and leaderboard
// computations over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/internal/telemetry"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

// Server serves the /api/v1 routes for one base configuration.
type Server struct {
	cfg     *contract.Config
	mgr     contract.StoreManager
	metrics *telemetry.Metrics
	logger  logrus.FieldLogger
	router  *chi.Mux
}

// New builds the router. A nil mgr serves without a snapshot store.
func New(cfg *contract.Config, mgr contract.StoreManager, metrics *telemetry.Metrics, logger logrus.FieldLogger) *Server {
	if metrics == nil {
		metrics = telemetry.NewMetrics("signalboard", "unknown")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{
		cfg:     cfg,
		mgr:     mgr,
		metrics: metrics,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Method(http.MethodGet, "/metrics", metrics.Handler())

		r.Post("/signal", s.handleSignal)
		r.Post("/authority", s.handleAuthority)
		r.Post("/mindshare", s.handleMindshare)
		r.Post("/leaderboard", s.handleLeaderboard)
		r.Get("/followers/{accountID}", s.handleFollowers)
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then drains in-flight
// requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.WithFields(logrus.Fields{
			"status":     ww.Status(),
			"method":     r.Method,
			"path":       r.URL.Path,
			"latency":    time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}
