// Package httpapi wires the verdict service's Fiber handlers, middleware
// stack, and route table together. Each handler is a thin adapter: request
// parsing and status-code mapping live here, the actual work lives in
// internal/orchestrator and internal/cache.
package httpapi

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/happyscroll/verdict-service/internal/apierr"
	"github.com/happyscroll/verdict-service/internal/middleware"
	"github.com/happyscroll/verdict-service/internal/orchestrator"
)

// verdictRequest is the POST /verdict request body.
type verdictRequest struct {
	VideoURL string `json:"video_url"`
}

// VerdictHandler exposes the single public operation (C8) over HTTP.
type VerdictHandler struct {
	orchestrator *orchestrator.Orchestrator
	log          zerolog.Logger
}

// NewVerdictHandler constructs a VerdictHandler.
func NewVerdictHandler(o *orchestrator.Orchestrator, log zerolog.Logger) *VerdictHandler {
	return &VerdictHandler{orchestrator: o, log: log}
}

// Post handles POST /api/happyScroll/v1/verdict.
func (h *VerdictHandler) Post(c fiber.Ctx) error {
	var req verdictRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "request body must be valid JSON with a video_url field")
	}

	videoURL, errMsg := middleware.ValidateVideoURL(req.VideoURL)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, errMsg)
	}

	clientID, errMsg := middleware.ValidateClientID(c.Get("X-Client-ID"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, errMsg)
	}

	v, err := h.orchestrator.GetVerdict(c.Context(), videoURL, clientID)
	if err != nil {
		h.log.Warn().Err(err).Msg("verdict request failed")
		if apiErr, ok := err.(*apierr.Error); ok && apiErr.Budget != nil {
			Metrics.BudgetExhaustedHits.Inc()
		}
		return writeAPIError(c, err)
	}

	Metrics.VerdictsTotal.WithLabelValues(isSafeLabel(v.IsSafe)).Inc()
	return c.JSON(v)
}

func isSafeLabel(safe bool) string {
	if safe {
		return "true"
	}
	return "false"
}

// writeAPIError maps an apierr.Error's Class onto the HTTP status family
// the error handling design assigns it: client errors 400, budget
// exhaustion 429, everything else (upstream dependency failures, internal
// cache errors) 500 — the caller cannot distinguish or act differently on
// those two, so both fail closed the same way. A budget error (global or
// per-client) carries its limit/count_today in a structured "detail"
// object rather than a bare string, per the 429 contract.
func writeAPIError(c fiber.Ctx, err error) error {
	apiErr, ok := err.(*apierr.Error)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "internal error")
	}

	if apiErr.Budget != nil {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"detail": fiber.Map{
				"error":       string(apiErr.Kind),
				"message":     apiErr.Detail,
				"limit":       apiErr.Budget.Limit,
				"count_today": apiErr.Budget.CountToday,
				"info":        apiErr.Budget.HumanMessage,
			},
		})
	}

	status := fiber.StatusInternalServerError
	switch apiErr.Class() {
	case apierr.ClassClient:
		status = fiber.StatusBadRequest
	case apierr.ClassBudget:
		status = fiber.StatusTooManyRequests
	case apierr.ClassUpstream, apierr.ClassInternal:
		status = fiber.StatusInternalServerError
	}

	return middleware.ErrorResponse(c, status, apiErr.Detail)
}
