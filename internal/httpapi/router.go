package httpapi

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/happyscroll/verdict-service/internal/middleware"
)

// Handlers holds all handler instances the router wires up.
type Handlers struct {
	Verdict *VerdictHandler
	Cache   *CacheHandler
	Health  *HealthHandler
}

// Setup configures the middleware stack and the full route table.
func Setup(app *fiber.App, h *Handlers, corsOrigins string, log zerolog.Logger) {
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger(log))
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(MetricsMiddleware())

	app.Get("/api/health", h.Health.Live)
	app.Get("/api/health/ready", h.Health.Ready)
	app.Get("/metrics", MetricsHandler())

	verdictLimiter := middleware.NewVerdictRateLimiter()
	adminLimiter := middleware.NewCacheAdminRateLimiter()

	api := app.Group("/api/happyScroll/v1")
	api.Post("/verdict", verdictLimiter.Handler(), h.Verdict.Post)
	api.Get("/cache/stats", adminLimiter.Handler(), h.Cache.Stats)
	api.Post("/cache/clear", adminLimiter.Handler(), h.Cache.Clear)
}
