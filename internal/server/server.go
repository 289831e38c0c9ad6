package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/trusttrade/trustd/internal/domain"
	"github.com/trusttrade/trustd/internal/server/handler"
	"github.com/trusttrade/trustd/internal/server/middleware"
	"github.com/trusttrade/trustd/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port            int
	CORSOrigins     []string
	APIKey          string // if empty, authentication is disabled
	RateLimit       int    // requests per RateLimitWindow per client IP; 0 disables
	RateLimitWindow time.Duration
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health        *handler.HealthHandler
	Trades        *handler.TradeHandler
	Quotes        *handler.QuoteHandler
	Users         *handler.UserHandler
	Reviews       *handler.ReviewHandler
	Analytics     *handler.AnalyticsHandler
	Notifications *handler.NotificationHandler
}

// Server is the HTTP + WebSocket API server for the TrustTrade backend.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (logging, CORS, auth, rate limiting) and attaches
// the WebSocket hub. limiter may be nil to disable rate limiting.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// --- Register routes ---

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Trade endpoints.
	mux.HandleFunc("GET /api/trades/active", handlers.Trades.ListActive)
	mux.HandleFunc("GET /api/trades/{id}", handlers.Trades.GetTrade)
	mux.HandleFunc("GET /api/trades/{id}/countdown", handlers.Trades.GetCountdown)
	mux.HandleFunc("GET /api/trades/{id}/receipt", handlers.Trades.GetReceipt)

	// Quote endpoint.
	mux.HandleFunc("POST /api/quotes", handlers.Quotes.CreateQuote)

	// User endpoints.
	mux.HandleFunc("GET /api/users/{address}", handlers.Users.GetUser)
	mux.HandleFunc("GET /api/users/{address}/trades", handlers.Trades.ListByUser)
	mux.HandleFunc("GET /api/users/{address}/stats", handlers.Users.GetStats)
	mux.HandleFunc("GET /api/users/{address}/reputation", handlers.Users.GetReputation)
	mux.HandleFunc("PUT /api/users/{address}/profile", handlers.Users.UpdateProfile)

	// Review endpoints.
	mux.HandleFunc("GET /api/reviews/user/{address}", handlers.Reviews.ListByUser)

	// Analytics endpoints.
	mux.HandleFunc("GET /api/analytics/platform", handlers.Analytics.GetPlatform)

	// Notification endpoints.
	mux.HandleFunc("POST /api/notifications", handlers.Notifications.Create)
	mux.HandleFunc("GET /api/notifications/user/{address}", handlers.Notifications.ListByUser)
	mux.HandleFunc("GET /api/notifications/user/{address}/preferences", handlers.Notifications.GetPreferences)
	mux.HandleFunc("PUT /api/notifications/user/{address}/preferences", handlers.Notifications.UpdatePreferences)
	mux.HandleFunc("POST /api/notifications/{id}/read", handlers.Notifications.MarkRead)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux

	// Apply auth middleware (skips if APIKey is empty).
	h = middleware.Auth(cfg.APIKey)(h)

	// Apply per-IP rate limiting when a limiter is configured.
	if limiter != nil && cfg.RateLimit > 0 {
		window := cfg.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		h = middleware.RateLimit(limiter, cfg.RateLimit, window)(h)
	}

	// Apply request logging middleware.
	h = middleware.Logging(logger)(h)

	// Apply CORS middleware.
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
