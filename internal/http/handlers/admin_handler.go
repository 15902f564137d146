package handlers

import (
	"github.com/gofiber/fiber/v2"

	"catalogsync/internal/credential"
	"catalogsync/internal/domain"
	applog "catalogsync/internal/log"
	"catalogsync/internal/metrics"
	"catalogsync/internal/ratelimit"
)

// AdminHandler exposes the shared limiter and credential registry.
type AdminHandler struct {
	Limiter     *ratelimit.Window
	Credentials *credential.Store
}

func (h *AdminHandler) limitedPlatform(c *fiber.Ctx) bool {
	p, ok := domain.ParsePlatform(c.Params("platform"))
	return ok && p == domain.ShortVideo
}

// POST /api/ratelimit/:platform/reset
func (h *AdminHandler) ResetRateLimit(c *fiber.Ctx) error {
	if !h.limitedPlatform(c) {
		return jsonError(c, fiber.StatusBadRequest, "platform has no rate limit")
	}
	h.Limiter.Reset()
	applog.Audit(c, "ratelimit.reset", map[string]any{"platform": string(domain.ShortVideo)})
	return c.JSON(fiber.Map{"message": "shortvideo rate limit reset"})
}

// GET /api/ratelimit/:platform
func (h *AdminHandler) RateLimitStatus(c *fiber.Ctx) error {
	if !h.limitedPlatform(c) {
		return jsonError(c, fiber.StatusBadRequest, "platform has no rate limit")
	}
	s := h.Limiter.Snapshot()
	return c.JSON(fiber.Map{
		"count":          s.Count,
		"limit":          s.Limit,
		"windowSeconds":  int(s.Length.Seconds()),
		"resetInSeconds": int(s.ResetIn.Seconds()),
	})
}

// POST /api/credential/issue
func (h *AdminHandler) IssueCredential(c *fiber.Ctx) error {
	tok := h.Credentials.Issue()
	metrics.CredentialIssued()
	applog.Audit(c, "credential.issue", nil)
	return c.JSON(domain.TokenResponse{Token: tok, ExpiresIn: int(h.Credentials.TTL().Seconds())})
}
