// Package server provides the HTTP API of besselcalc: sequence evaluation,
// upward/downward comparison against the reference oracle, and metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agbru/besselcalc/internal/bessel"
	"github.com/agbru/besselcalc/internal/config"
	apperrors "github.com/agbru/besselcalc/internal/errors"
	"github.com/agbru/besselcalc/internal/logging"
	"github.com/agbru/besselcalc/internal/reference"
	"github.com/agbru/besselcalc/internal/service"
)

// Server wraps http.Server with the besselcalc routes, a middleware chain
// and graceful shutdown.
type Server struct {
	factory        bessel.EvaluatorFactory
	oracle         reference.Oracle
	service        service.Service
	cfg            config.AppConfig
	httpServer     *http.Server
	handler        http.Handler
	logger         logging.Logger
	shutdownSignal chan os.Signal
	rateLimiter    *RateLimiter
	securityConfig SecurityConfig
	metrics        *Metrics
	timeouts       Timeouts
	version        string
}

// NewServer creates a Server serving the evaluators of factory, measured
// against oracle.
func NewServer(factory bessel.EvaluatorFactory, oracle reference.Oracle, cfg config.AppConfig, opts ...Option) *Server {
	s := &Server{
		factory:        factory,
		oracle:         oracle,
		cfg:            cfg,
		logger:         logging.NewLogger(os.Stdout, "server", "info"),
		shutdownSignal: make(chan os.Signal, 1),
		securityConfig: DefaultSecurityConfig(),
		metrics:        NewMetrics(),
		timeouts:       DefaultServerTimeouts(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.service == nil {
		s.service = service.NewEvaluatorService(s.factory, s.oracle, s.cfg, s.securityConfig.MaxLMax)
	}
	if s.rateLimiter == nil {
		s.rateLimiter = NewRateLimiter(DefaultRateLimiterConfig())
	}

	mux := http.NewServeMux()
	// Security -> RateLimit -> Logging -> Metrics -> Handler
	mux.HandleFunc("/evaluate", s.wrapWithMiddleware("/evaluate", s.handleEvaluate))
	mux.HandleFunc("/compare", s.wrapWithMiddleware("/compare", s.handleCompare))
	mux.HandleFunc("/methods", s.wrapWithMiddleware("/methods", s.handleMethods))
	mux.HandleFunc("/health", s.wrapWithMiddleware("/health", s.handleHealth))
	mux.HandleFunc("/metrics", s.wrapWithMiddleware("/metrics", s.handleMetrics))
	s.handler = mux

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  s.timeouts.ReadTimeout,
		WriteTimeout: s.timeouts.WriteTimeout,
		IdleTimeout:  s.timeouts.IdleTimeout,
	}

	return s
}

// Handler returns the routed handler with its middleware chain.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) wrapWithMiddleware(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	wrapped := s.metricsMiddleware(endpoint, handler)
	wrapped = s.loggingMiddleware(wrapped)
	wrapped = RateLimitMiddleware(s.rateLimiter, wrapped)
	wrapped = SecurityMiddleware(s.securityConfig, wrapped)
	return wrapped
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	signal.Notify(s.shutdownSignal, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s.shutdownSignal)
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			logging.String("addr", s.httpServer.Addr),
			logging.Int("lmax_limit", s.securityConfig.MaxLMax),
			logging.Int("precision", int(s.cfg.Precision)))
		s.logger.Println("Available endpoints:")
		s.logger.Println("  GET /evaluate?x=<float>&lmax=<int>&method=<up|down>")
		s.logger.Println("  GET /compare?x=<float>&lmax=<int>")
		s.logger.Println("  GET /methods")
		s.logger.Println("  GET /health")
		s.logger.Println("  GET /metrics")

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-s.shutdownSignal:
		s.logger.Info("shutdown signal received, initiating graceful shutdown")
	case err := <-errCh:
		return apperrors.NewServerError("server failed to start", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeouts.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return apperrors.NewServerError("failed to gracefully shutdown server", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}

// Close releases the background resources of a server that was never
// started.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}
