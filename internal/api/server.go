package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server is the preview HTTP server with WebSocket support.
// It combines the HTTP router with a WebSocket hub that streams fresh
// layout snapshots to connected dashboards.
type Server struct {
	engine      EngineInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// NewServer creates a new API server with default production configuration.
//
// IMPORTANT: Background workers do NOT start until Start() is called.
// This enables testing by allowing the server to be constructed without
// starting goroutines or opening network listeners.
//
// For testing HTTP endpoints without WebSocket support, use NewRouter() directly.
func NewServer(engine EngineInterface, siteDir string) *Server {
	s := &Server{
		engine: engine,
		wsHub:  NewWebSocketHub(),
	}

	// Create rate limiter (we track it for cleanup on Stop)
	s.rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)

	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		RateLimiter: s.rateLimiter,
		SiteDir:     siteDir,
	})

	// WebSocket route needs the hub instance, so it can't be part of the
	// pure NewRouter factory
	s.router.Get("/ws", s.wsHub.HandleWebSocket)

	return s
}

// Start begins the HTTP server AND starts background workers.
// This is the ONLY method that starts goroutines or opens network listeners.
//
// Call this method only once. To stop the server, signal the process.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop(s.engine)

	log.Printf("🌐 Preview server starting on %s", addr)
	log.Printf("🌌 Galaxy: http://localhost%s/", addr)

	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
// Use this in integration tests instead of calling Start().
//
// Example:
//
//	server := api.NewServer(engine, "dist")
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/layout")
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub, so callers can push builds as they finish.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Stop performs graceful shutdown of background workers.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
