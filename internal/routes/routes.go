package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/roadrulez/roadrulez/internal/auth"
	"github.com/roadrulez/roadrulez/internal/handlers"
	"github.com/roadrulez/roadrulez/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	tokenManager *auth.TokenManager,
	loginRateLimit middleware.RateLimitConfig,
) {
	// Public: the login endpoint carries an outer per-IP cap in addition to
	// the DB-backed per-(IP, email) limiter inside the service.
	router.With(middleware.RateLimitByIP(loginRateLimit)).Post("/api/auth/login", authHandler.Login)

	// Session-protected routes
	router.Group(func(r chi.Router) {
		r.Use(auth.SessionMiddleware(tokenManager))
		r.Get("/api/auth/me", authHandler.Me)
	})
}
