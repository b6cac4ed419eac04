package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studyplanner-backend/internal/handlers"
	"studyplanner-backend/internal/middleware"
	"studyplanner-backend/internal/websocket"
)

func New(
	resourceHandler *handlers.ResourceHandler,
	sessionHandler *handlers.SessionHandler,
	dashboardHandler *handlers.DashboardHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// General limiter (120 req/min per IP)
	limiter := middleware.NewRateLimiter(120, time.Minute)
	r.Use(limiter.Middleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── Resource Routes ────
	r.Route("/resources", func(r chi.Router) {
		r.Get("/", resourceHandler.List)
		r.Post("/", resourceHandler.Create)
		r.Put("/{id}/progress", resourceHandler.UpdateProgress)
		r.Delete("/{id}", resourceHandler.Delete)
	})

	// ──── Session Routes ────
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", sessionHandler.List)
		r.Post("/", sessionHandler.Create)
		r.Put("/{id}", sessionHandler.Update)
		r.Patch("/{id}/status", sessionHandler.SetStatus)
		r.Delete("/{id}", sessionHandler.Delete)
	})

	// ──── Dashboard Routes ────
	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/today", dashboardHandler.Today)
	})

	// ──── WebSocket ────
	r.Get("/ws", wsHub.HandleWebSocket)

	return r
}
