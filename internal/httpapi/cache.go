package httpapi

import (
	"github.com/gofiber/fiber/v3"

	"github.com/happyscroll/verdict-service/internal/cache"
)

// CacheHandler exposes the admin-only cache inspection and invalidation
// operations (C6).
type CacheHandler struct {
	cache *cache.Cache
}

// NewCacheHandler constructs a CacheHandler.
func NewCacheHandler(c *cache.Cache) *CacheHandler {
	return &CacheHandler{cache: c}
}

// Stats handles GET /api/happyScroll/v1/cache/stats.
func (h *CacheHandler) Stats(c fiber.Ctx) error {
	return c.JSON(h.cache.Stats(c.Context()))
}

// Clear handles POST /api/happyScroll/v1/cache/clear.
func (h *CacheHandler) Clear(c fiber.Ctx) error {
	n := h.cache.Clear(c.Context())
	return c.JSON(fiber.Map{"entries_removed": n})
}
