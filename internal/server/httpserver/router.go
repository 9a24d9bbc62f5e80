package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/nftmesh/nftmesh-go/internal/server/httpserver/handler"
	"github.com/nftmesh/nftmesh-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler serves the API endpoints.
	Handler *handler.Handler

	// Metrics for request instrumentation and the /metrics endpoint.
	// Nil disables both.
	Metrics *metric.Metrics

	// Logger for request logging.
	Logger *slog.Logger

	// RateLimitRPS is the per-client rate limit (requests/second).
	// Zero disables rate limiting.
	RateLimitRPS float64

	// RateLimitBurst is the per-client burst size.
	RateLimitBurst int

	// CORSAllowedOrigins is the list of allowed CORS origins (empty = allow all).
	CORSAllowedOrigins []string
}

// NewRouter creates the HTTP router with all routes and middleware.
//
// Health and metrics endpoints carry only Recover and RequestID; business
// and admin routes additionally get CORS, rate limiting, request logging,
// and per-route metrics.
func NewRouter(cfg *RouterConfig) http.Handler {
	h := cfg.Handler
	mux := http.NewServeMux()

	// base wraps a route with the always-on middleware.
	base := func(route string) http.Handler {
		mw := []Middleware{Recover(cfg.Logger), RequestID()}
		if cfg.Metrics != nil {
			mw = append(mw, Observe(cfg.Metrics, route))
		}
		return Chain(h, mw...)
	}

	// business adds rate limiting, CORS, and request logging.
	var limit Middleware
	if cfg.RateLimitRPS > 0 {
		// One shared limiter map across routes, keyed by client IP.
		limit = RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Metrics)
	}
	business := func(route string) http.Handler {
		mw := []Middleware{Recover(cfg.Logger), RequestID()}
		if limit != nil {
			mw = append(mw, limit)
		}
		mw = append(mw, CORS(cfg.CORSAllowedOrigins))
		if cfg.Metrics != nil {
			mw = append(mw, Observe(cfg.Metrics, route))
		}
		mw = append(mw, RequestLog(cfg.Logger))
		return Chain(h, mw...)
	}

	// Health endpoints
	mux.Handle("GET /health", base("/health"))
	mux.Handle("GET /ready", base("/ready"))

	// Metrics endpoint
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), Recover(cfg.Logger)))
	}

	// Query endpoints
	mux.Handle("GET /v1/supply", business("/v1/supply"))
	mux.Handle("GET /v1/tokens/{id}", business("/v1/tokens/{id}"))
	mux.Handle("GET /v1/tokens/{id}/owner", business("/v1/tokens/{id}/owner"))
	mux.Handle("GET /v1/tokens/{id}/approved", business("/v1/tokens/{id}/approved"))
	mux.Handle("GET /v1/accounts/{account}/balance", business("/v1/accounts/{account}/balance"))
	mux.Handle("GET /v1/accounts/{owner}/operators/{operator}", business("/v1/accounts/{owner}/operators/{operator}"))

	// Mutation endpoints
	mux.Handle("POST /v1/tokens/mint", business("/v1/tokens/mint"))
	mux.Handle("POST /v1/tokens/{id}/burn", business("/v1/tokens/{id}/burn"))
	mux.Handle("POST /v1/tokens/{id}/approve", business("/v1/tokens/{id}/approve"))
	mux.Handle("POST /v1/tokens/{id}/transfer", business("/v1/tokens/{id}/transfer"))
	mux.Handle("POST /v1/tokens/{id}/transfer-from", business("/v1/tokens/{id}/transfer-from"))
	mux.Handle("POST /v1/operators", business("/v1/operators"))

	// Event feed
	mux.Handle("GET /v1/events", business("/v1/events"))

	// Admin endpoints
	mux.Handle("GET /admin/v1/status/summary", business("/admin/v1/status/summary"))
	mux.Handle("POST /admin/v1/backups/snapshots", business("/admin/v1/backups/snapshots"))
	mux.Handle("GET /admin/v1/backups/snapshots", business("/admin/v1/backups/snapshots"))
	mux.Handle("POST /admin/v1/backups/snapshots/prune", business("/admin/v1/backups/snapshots/prune"))

	return mux
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		RateLimitRPS:   0,
		RateLimitBurst: 20,
	}
}
