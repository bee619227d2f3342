package api

import (
	"net/http"

	"galaxy-forge/internal/galaxy"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface defines the layout engine methods used by the API.
// This interface enables mocking for tests without spinning up a full engine.
// Keep this minimal - only include methods the API layer actually calls.
type EngineInterface interface {
	// GetSnapshot returns the latest lock-free immutable layout snapshot
	GetSnapshot() *galaxy.LayoutSnapshot
	// Metrics returns the metrics of the most recent build
	Metrics() galaxy.LayoutMetrics
	// EntityCount returns how many entities the engine holds
	EntityCount() int
	// AddEntity registers one entity record for the next build
	AddEntity(rec galaxy.Record) error
	// RecordInteraction feeds a visitor interaction into hotspot tracking
	RecordInteraction(x, y float64, source string)
	// BuildLayout runs a full layout pass
	BuildLayout() (galaxy.LayoutMetrics, error)
	// Advisor exposes the strategy performance history
	Advisor() *galaxy.Advisor
	// GetEventLogStats reports event log throughput and drops
	GetEventLogStats() map[string]interface{}
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
// This struct is designed for dependency injection and testability.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Engine: mockEngine,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the layout engine (required)
	Engine EngineInterface

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, uses the default origins.
	CORSOrigins []string

	// SiteDir is the directory holding the generated static site.
	// If empty, defaults to "./dist".
	SiteDir string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler functions for the router.
type routerHandlers struct {
	engine EngineInterface
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE - it has no side effects:
//   - No goroutines are started
//   - No network listeners are opened
//   - No background workers are launched
//
// This makes it safe to use in tests with httptest.NewServer.
//
// Example:
//
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/layout")
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	// CORS configuration
	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{engine: cfg.Engine}

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Layout state
		r.Get("/layout", h.handleGetLayout)
		r.Get("/entities", h.handleGetEntities)
		r.Get("/metrics", h.handleGetMetrics)

		// Analytics and strategy history
		r.Get("/analytics", h.handleGetAnalytics)

		// Visitor interactions feed hotspot tracking
		r.Post("/interaction", h.handleInteraction)

		// Entity management and rebuilds
		r.Post("/entity", h.handleAddEntity)
		r.Post("/rebuild", h.handleRebuild)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Serve the generated static site
	siteDir := cfg.SiteDir
	if siteDir == "" {
		siteDir = "./dist"
	}
	r.Handle("/*", http.FileServer(http.Dir(siteDir)))

	return r
}
