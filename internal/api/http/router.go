package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/certtrack-service/internal/api/http/handlers"
	"github.com/spec-kit/certtrack-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Cache          *handlers.CacheHandler
	Sync           *handlers.SyncHandler
	Import         *handlers.ImportHandler
	Compliance     *handlers.ComplianceHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Reads are open; every route that
// mutates the cache sits behind the auth middleware.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api")
	api.Get("/cache", cfg.Cache.GetCache)
	api.Get("/users/:email", cfg.Cache.GetUser)
	api.Get("/roles", cfg.Compliance.ListRoles)
	api.Get("/compliance", cfg.Compliance.Evaluate)
	api.Get("/compliance/export", cfg.Compliance.Export)
	api.Get("/stats", cfg.Compliance.Stats)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Put("/users", cfg.Cache.PutUser)
	protected.Post("/refresh-cache", cfg.Sync.RefreshCache)
	protected.Post("/upload-csv", cfg.Import.UploadCSV)
}
