package contacts

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/padmasana/studio/internal/middleware"
)

// RegisterRoutes sets up the contact endpoints on the API group. The form
// endpoint is public but rate-limited; the triage endpoints are admin only.
func RegisterRoutes(api *echo.Group, h *ContactHandler, requireAdmin echo.MiddlewareFunc) {
	api.POST("/contact", h.Submit, middleware.RateLimit(10, time.Hour))
	api.GET("/contacts", h.List, requireAdmin)
	api.PATCH("/contacts/:id/status", h.SetStatus, requireAdmin)
}
