package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"sneakerfit-backend/internal/handlers"
	"sneakerfit-backend/internal/middleware"
	"sneakerfit-backend/internal/websocket"
)

func New(
	sessions *middleware.Sessions,
	apiLimiter *middleware.RateLimiter,
	homeHandler *handlers.HomeHandler,
	chatHandler *handlers.ChatHandler,
	imageHandler *handlers.ImageHandler,
	wsHub *websocket.Hub,
	frontendURL string,
	trustProxy bool,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	if trustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: frontendURL != "*",
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)

		r.Get("/", homeHandler.Index)

		r.Route("/api", func(r chi.Router) {
			r.Use(apiLimiter.Middleware)
			r.Post("/chat", chatHandler.Chat)
			r.Post("/image-analysis", imageHandler.Analyze)
			r.Post("/reset", chatHandler.Reset)

			// ──── WebSocket ────
			r.Get("/chat/stream", wsHub.HandleWebSocket)
		})
	})

	return r
}
