package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Field limits for request validation.
const (
	MaxVideoURLLen  = 2048 // generous upper bound for a YouTube URL or bare video id
	MaxClientIDLen  = 128
	MinClientIDLen  = 8
)

var (
	// clientIDRe matches the browser extension's locally-generated client
	// id: an opaque alphanumeric token, not a YouTube entity id.
	clientIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ErrorResponse returns the API's standard error body: {"detail": message}.
func ErrorResponse(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"detail": message})
}

// ValidateVideoURL checks that the request body's video_url field is
// present and within a sane length. Actual ID extraction and format
// validation is internal/identity's job — this is just a cheap body-shape
// guard before that package runs.
func ValidateVideoURL(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "video_url is required"
	}
	if len(raw) > MaxVideoURLLen {
		return "", "video_url is too long"
	}
	return raw, ""
}

// ValidateClientID checks the optional X-Client-ID header, when present,
// is a well-formed opaque token. An empty client id is valid — the header
// is optional per the API contract.
func ValidateClientID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ""
	}
	if len(id) < MinClientIDLen || len(id) > MaxClientIDLen {
		return "", "X-Client-ID must be 8-128 characters"
	}
	if !clientIDRe.MatchString(id) {
		return "", "X-Client-ID contains invalid characters"
	}
	return id, ""
}
