package routes

import (
	"encoding/json"
	"net/http"

	"github.com/BradenHooton/sentinel/internal/auth"
	"github.com/BradenHooton/sentinel/internal/database"
	"github.com/BradenHooton/sentinel/internal/handlers"
	"github.com/BradenHooton/sentinel/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	dashboardHandler *handlers.DashboardHandler,
	authMiddleware *auth.Middleware,
	db *database.DB,
) {
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes
	router.Get("/health", healthCheck(db))
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/signup", authHandler.Signup)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)

	// Monitoring routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Use(authMiddleware.RequireRole("admin"))

		r.Get("/admin/attempts", dashboardHandler.RecentAttempts)
		r.Get("/admin/alerts", dashboardHandler.RecentAlerts)
	})
}

func healthCheck(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if err := db.HealthCheck(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}
