package events

import "github.com/labstack/echo/v4"

// RouteMiddleware bundles the cross-cutting layers the event routes need.
// The app wires these from the auth service, response cache, coordinator,
// and admission pools.
type RouteMiddleware struct {
	RequireAdmin   echo.MiddlewareFunc
	Cache          echo.MiddlewareFunc
	Dedupe         echo.MiddlewareFunc
	GateUploads    echo.MiddlewareFunc
	GateProcessing echo.MiddlewareFunc
}

// RegisterRoutes sets up the event, photo, and gallery endpoints on the
// API group. Reads are public, deduplicated, and cached; writes require
// the admin token, and the multipart ones pass both admission gates.
func RegisterRoutes(api *echo.Group, h *EventHandler, mw RouteMiddleware) {
	api.GET("/events", h.ListEvents, mw.Dedupe, mw.Cache)
	api.GET("/events/:id", h.GetEvent, mw.Dedupe, mw.Cache)

	api.POST("/events", h.CreateEvent, mw.RequireAdmin, mw.GateUploads, mw.GateProcessing)
	api.PUT("/events/:id", h.UpdateEvent, mw.RequireAdmin, mw.GateUploads, mw.GateProcessing)
	api.DELETE("/events/:id", h.DeleteEvent, mw.RequireAdmin)

	api.POST("/events/:id/photos", h.AddPhoto, mw.RequireAdmin, mw.GateUploads, mw.GateProcessing)
	api.DELETE("/events/:id/photos/:photoID", h.DeletePhoto, mw.RequireAdmin)

	// The flattened gallery is reachable under both names for the SPA.
	api.GET("/photos", h.Gallery, mw.Dedupe, mw.Cache)
	api.GET("/gallery", h.Gallery, mw.Dedupe, mw.Cache)
}
