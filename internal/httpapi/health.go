package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/happyscroll/verdict-service/internal/cache"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	cache   *cache.Cache
	startAt time.Time
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(c *cache.Cache) *HealthHandler {
	return &HealthHandler{cache: c, startAt: time.Now()}
}

// Live handles GET /api/health — liveness probe.
func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// Ready handles GET /api/health/ready — readiness probe. The cache backend
// is the only external dependency the service has once a request is in
// flight (YouTube/Vision/Gemini calls happen per-request and aren't probed
// here); a degraded cache backend still serves requests (it just never
// hits). When the cache check fails, readiness reports status "degraded"
// with the cache check marked down and answers HTTP 503.
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	status := "healthy"
	cacheCheck := fiber.Map{"status": "up"}
	if err := h.cache.Ping(ctx); err != nil {
		status = "degraded"
		cacheCheck = fiber.Map{"status": "down", "error": "connection failed"}
	}

	resp := fiber.Map{
		"status":         status,
		"checks":         fiber.Map{"cache": cacheCheck},
		"uptime_seconds": int(time.Since(h.startAt).Seconds()),
	}

	httpStatus := fiber.StatusOK
	if status != "healthy" {
		httpStatus = fiber.StatusServiceUnavailable
	}
	return c.Status(httpStatus).JSON(resp)
}
