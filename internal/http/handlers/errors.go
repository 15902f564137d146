package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "catalogsync/internal/log"
)

const friendlyError = "Something went wrong. Please try again."

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

// ErrorHandler turns errors returned by handlers into JSON responses.
// Anything that is not a client error is logged and reported without detail.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return jsonError(c, fe.Code, fe.Message)
	}
	c.Status(fiber.StatusInternalServerError)
	applog.Error(c, "server.error", err, nil)
	return jsonError(c, fiber.StatusInternalServerError, friendlyError)
}
