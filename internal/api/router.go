package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ipquest/ipquest-be/internal/api/handlers"
	"github.com/ipquest/ipquest-be/internal/auth"
	"github.com/ipquest/ipquest-be/internal/services"
	"github.com/ipquest/ipquest-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	tokens *auth.TokenManager,
	hub *websocket.Hub,
	allowedOrigins []string,
	userService services.UserServiceProvider,
	progressService services.ProgressServiceProvider,
	leaderboardService services.LeaderboardServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, tokens)
	progressHandler := handlers.NewProgressHandler(progressService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// Paths mirror what the mobile client already calls.
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Post("/reset-password", userHandler.RequestPasswordReset)
		r.Post("/update-password", userHandler.UpdatePassword)
		r.Get("/leaderboard", leaderboardHandler.Get)
		r.Get("/ws", wsHandler.Serve)

		// User-scoped endpoints require a bearer token.
		r.Group(func(r chi.Router) {
			r.Use(tokens.Middleware())
			r.Get("/user", userHandler.GetMe)
			r.Get("/user-levels", progressHandler.GetUserLevels)
			r.Post("/save-level", progressHandler.SaveLevel)
		})
	})

	return r
}
