package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"catalogsync/internal/domain"
	applog "catalogsync/internal/log"
	"catalogsync/internal/platforms"
	"catalogsync/internal/repos"
	"catalogsync/internal/services"
	"catalogsync/internal/validate"
)

type SyncHandler struct {
	Sync *services.SyncService
}

// POST /api/sync/:platform/:productId
//
// Business failures (rate limited, bad token, bad price) are 200 with
// success=false so the UI can show them per platform.
func (h *SyncHandler) Run(c *fiber.Ctx) error {
	platform := c.Params("platform")
	productID, ok := validate.ID(c.Params("productId"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}

	var body domain.SyncRequest
	if raw := c.Body(); len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "request body must be JSON")
		}
	}
	token, ok := validate.Token(body.Token)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "token"})
		return jsonError(c, fiber.StatusBadRequest, "malformed token")
	}

	res, err := h.Sync.Sync(c.UserContext(), productID, platform, platforms.Request{Token: token})
	switch {
	case errors.Is(err, repos.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, "product not found")
	case errors.Is(err, services.ErrInvalidPlatform):
		applog.Security(c, "validation.fail", map[string]any{"field": "platform", "value": platform})
		return jsonError(c, fiber.StatusBadRequest, "unknown platform")
	case err != nil:
		applog.Error(c, "sync.fail", err, map[string]any{"product_id": productID, "platform": platform})
		return err
	}

	out := domain.SyncResponse{
		Success: res.Success,
		Data: &domain.SyncData{
			Platform:      res.Platform,
			ExternalID:    res.ExternalID,
			Message:       res.Message,
			Status:        res.Status,
			NewCredential: res.NewCredential,
		},
	}
	fields := map[string]any{"product_id": productID, "platform": string(res.Platform)}
	if res.Success {
		fields["external_id"] = res.ExternalID
		fields["credential_refreshed"] = res.NewCredential != ""
		applog.Audit(c, "sync.success", fields)
		return c.JSON(out)
	}

	out.Error = res.Error
	out.Reason = res.Reason
	out.Retryable = res.Retryable
	if res.Reason == platforms.ReasonRateLimited {
		out.RetryAfter = services.RetryAfterSeconds(res.RetryAfter)
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(out.RetryAfter))
	}
	fields["reason"] = res.Reason
	fields["retryable"] = res.Retryable
	applog.Warn(c, "sync.failed", fields)
	return c.JSON(out)
}
