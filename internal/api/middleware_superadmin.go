package api

import "github.com/gofiber/fiber/v2"

// SuperadminOnly guards the back office. Runs after AuthRequired.
func (handler *Handler) SuperadminOnly(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !user.IsSuperadmin() {
		return apiError(c, fiber.StatusForbidden, "superadmin access required")
	}
	return c.Next()
}
