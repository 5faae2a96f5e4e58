package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/happyscroll/verdict-service/pkg/hash"
)

// NewRequestLogger returns a Fiber middleware that logs each request as
// structured JSON via the given logger (built once at startup by
// internal/logging.Init). Privacy: the client IP is hashed, never logged
// raw — the request path carries no PII in this API (video_url and
// X-Client-ID travel in the body/headers, not the path), so no path
// sanitization is needed.
func NewRequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		evt := log.Info()
		if status >= 500 {
			evt = log.Error()
		} else if status >= 400 {
			evt = log.Warn()
		}

		evt.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration_ms", duration).
			Str("ip_hash", hash.SHA256Hex(c.IP())[:12]).
			Int("bytes_sent", len(c.Response().Body())).
			Msg("request")

		return err
	}
}
