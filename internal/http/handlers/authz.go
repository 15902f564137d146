package handlers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	applog "catalogsync/internal/log"
)

const adminKeyHeader = "X-Admin-Key"

// HashAdminKey prepares the configured admin key for RequireAdminKey.
// An empty key yields nil, which leaves admin routes open.
func HashAdminKey(key string, cost int) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	return bcrypt.GenerateFromPassword([]byte(key), cost)
}

// RequireAdminKey guards out-of-band recovery routes.
func RequireAdminKey(hash []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(hash) == 0 {
			return c.Next()
		}
		key := c.Get(adminKeyHeader)
		if key == "" || bcrypt.CompareHashAndPassword(hash, []byte(key)) != nil {
			applog.Security(c, "access.denied.admin", nil)
			return jsonError(c, fiber.StatusUnauthorized, "admin key required")
		}
		return c.Next()
	}
}
