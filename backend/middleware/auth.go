package middleware

import (
	"advocatr/backend/models"
	"advocatr/backend/services"
	"advocatr/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	userKey    = "user"
	sessionKey = "session"
)

// AuthMiddleware requires a live session and stores its user and session in
// the request locals.
func AuthMiddleware(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, session, err := auth.Authenticate(c.UserContext(), utils.ExtractSessionToken(c))
		if err != nil {
			return err
		}
		c.Locals(userKey, user)
		c.Locals(sessionKey, session)
		return c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.ErrUnauthorized
		}
		if !user.IsAdmin() {
			return utils.ErrForbidden
		}
		return c.Next()
	}
}

// CurrentUser returns the user set by AuthMiddleware, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

func CurrentSession(c *fiber.Ctx) *models.Session {
	session, _ := c.Locals(sessionKey).(*models.Session)
	return session
}
