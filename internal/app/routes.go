package app

import (
	"github.com/padmasana/studio/internal/admission"
	"github.com/padmasana/studio/internal/auth"
	"github.com/padmasana/studio/internal/contacts"
	"github.com/padmasana/studio/internal/events"
)

// registerRoutes builds the feature services from the shared
// infrastructure and mounts every endpoint under /api.
func (a *App) registerRoutes() {
	api := a.Echo.Group("/api")

	authService := auth.NewAuthService(a.Config.Auth)
	requireAdmin := auth.RequireAdmin(authService)
	auth.RegisterRoutes(api, auth.NewAuthHandler(authService), authService)

	eventRepo := events.NewEventRepository(a.DB)
	eventService := events.NewEventService(eventRepo, a.Pipeline, a.Cache)
	events.RegisterRoutes(api, events.NewEventHandler(eventService, a.Pipeline), events.RouteMiddleware{
		RequireAdmin:   requireAdmin,
		Cache:          a.Cache.Middleware(a.Config.Cache.TTL),
		Dedupe:         a.Coordinator.Middleware(),
		GateUploads:    admission.GateUploads(a.UploadPool, a.Config.Upload.BodyTimeout),
		GateProcessing: admission.Gate(a.ProcessingPool),
	})

	contactRepo := contacts.NewContactRepository(a.DB)
	contactHandler := contacts.NewContactHandler(contacts.NewContactService(contactRepo))
	contacts.RegisterRoutes(api, contactHandler, requireAdmin)

	// Admin health sits behind the dedupe and short-TTL cache layers so a
	// polling dashboard cannot hammer the backends.
	api.GET("/health", a.adminHealth, requireAdmin,
		a.Coordinator.Middleware(), a.Cache.Middleware(a.Config.Cache.HealthTTL))

	// Public liveness probe for the container orchestrator.
	a.Echo.GET("/healthz", a.liveness)
}
