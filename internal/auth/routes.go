package auth

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/padmasana/studio/internal/middleware"
)

// RegisterRoutes sets up the auth endpoints on the API group.
//
// Login is rate-limited to 5 attempts per IP per hour to slow down
// brute-force attempts against the single admin account.
func RegisterRoutes(api *echo.Group, h *AuthHandler, service AuthService) {
	api.POST("/auth/login", h.Login, middleware.RateLimit(5, time.Hour))
	api.POST("/auth/logout", h.Logout, RequireAdmin(service))
}
