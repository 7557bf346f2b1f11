package app

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/padmasana/studio/internal/auth"
	"github.com/padmasana/studio/internal/web"
)

// backendPingTimeout bounds the health probes so a wedged backend cannot
// stall the endpoint.
const backendPingTimeout = 2 * time.Second

// adminHealth handles GET /api/health: service status, uptime, and the
// identity of the admin asking.
func (a *App) adminHealth(c echo.Context) error {
	user := ""
	if claims := auth.GetClaims(c); claims != nil {
		user = claims.Subject
	}
	return web.Data(c, http.StatusOK, map[string]any{
		"status":         "ok",
		"env":            a.Config.Env,
		"uptime_seconds": int64(a.Uptime().Seconds()),
		"user":           user,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}

// liveness handles GET /healthz: pings the database and Redis and reports
// 503 when either is down.
func (a *App) liveness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), backendPingTimeout)
	defer cancel()

	status := http.StatusOK
	backends := map[string]string{"database": "up", "redis": "up"}

	if err := a.DB.PingContext(ctx); err != nil {
		backends["database"] = "down"
		status = http.StatusServiceUnavailable
	}
	if err := a.Redis.Ping(ctx).Err(); err != nil {
		backends["redis"] = "down"
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, map[string]any{
		"success":  status == http.StatusOK,
		"backends": backends,
	})
}
