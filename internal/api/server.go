// Package api exposes the journal and its analytics over a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"trade-journal/internal/analytics"
	"trade-journal/internal/config"
	"trade-journal/internal/journal"
	"trade-journal/internal/metrics"
	"trade-journal/internal/strategy"
	"trade-journal/internal/trades"
)

// Deps are the services the API serves.
type Deps struct {
	Analytics  *analytics.Engine
	Trades     *trades.Service
	Strategies *strategy.Service
	Journal    *journal.Service
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger
}

// Server is the HTTP API server.
type Server struct {
	deps       Deps
	cfg        config.ServerConfig
	auth       *Authenticator
	limiter    *RateLimiter
	router     *mux.Router
	httpServer *http.Server
	logger     zerolog.Logger
	now        func() time.Time
}

// NewServer wires the routes. Rate limiting is off when cfg.RateLimit is 0.
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	s := &Server{
		deps:   deps,
		cfg:    cfg,
		auth:   NewAuthenticator(cfg.JWTSecret),
		router: mux.NewRouter(),
		logger: deps.Logger.With().Str("component", "api").Logger(),
		now:    time.Now,
	}
	if cfg.RateLimit > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	}
	s.setupRoutes()
	return s
}

// Authenticator returns the token signer used by the server.
func (s *Server) Authenticator() *Authenticator {
	return s.auth
}

func (s *Server) setupRoutes() {
	s.router.Use(requestContext(s.logger), accessLog(s.deps.Metrics))

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.deps.Metrics.Handler()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.auth.Middleware)
	if s.limiter != nil {
		api.Use(s.limiter.Middleware)
	}

	// Analytics
	api.HandleFunc("/analytics/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/analytics/equity", s.handleEquity).Methods(http.MethodGet)
	api.HandleFunc("/analytics/trend", s.handleTrend).Methods(http.MethodGet)
	api.HandleFunc("/analytics/strategies", s.handleStrategyRows).Methods(http.MethodGet)
	api.HandleFunc("/analytics/heatmap", s.handleHeatmap).Methods(http.MethodGet)
	api.HandleFunc("/analytics/psychology", s.handlePsychology).Methods(http.MethodGet)
	api.HandleFunc("/analytics/dashboard", s.handleDashboard).Methods(http.MethodGet)

	// Trades
	api.HandleFunc("/trades", s.handleListTrades).Methods(http.MethodGet)
	api.HandleFunc("/trades", s.handleCreateTrade).Methods(http.MethodPost)
	api.HandleFunc("/trades/{id}", s.handleGetTrade).Methods(http.MethodGet)
	api.HandleFunc("/trades/{id}", s.handleUpdateTrade).Methods(http.MethodPatch)
	api.HandleFunc("/trades/{id}", s.handleDeleteTrade).Methods(http.MethodDelete)

	// Strategies
	api.HandleFunc("/strategies", s.handleListStrategies).Methods(http.MethodGet)
	api.HandleFunc("/strategies", s.handleCreateStrategy).Methods(http.MethodPost)
	api.HandleFunc("/strategies/recompute", s.handleRecomputeAll).Methods(http.MethodPost)
	api.HandleFunc("/strategies/{id}", s.handleGetStrategy).Methods(http.MethodGet)
	api.HandleFunc("/strategies/{id}", s.handleUpdateStrategy).Methods(http.MethodPatch)
	api.HandleFunc("/strategies/{id}", s.handleDeleteStrategy).Methods(http.MethodDelete)
	api.HandleFunc("/strategies/{id}/recompute", s.handleRecompute).Methods(http.MethodPost)

	// Journal
	api.HandleFunc("/journal", s.handleListJournal).Methods(http.MethodGet)
	api.HandleFunc("/journal", s.handleCreateJournal).Methods(http.MethodPost)
	api.HandleFunc("/journal/{id}", s.handleGetJournal).Methods(http.MethodGet)
	api.HandleFunc("/journal/{id}", s.handleUpdateJournal).Methods(http.MethodPatch)
	api.HandleFunc("/journal/{id}", s.handleDeleteJournal).Methods(http.MethodDelete)
}

// Handler returns the router wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader, "Retry-After"},
		MaxAge:         86400,
	}).Handler(s.router)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("Starting API server")
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}
