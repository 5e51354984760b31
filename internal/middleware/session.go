package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"drishti/internal/models"
	"drishti/internal/session"
	"drishti/internal/storage"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "drishti_session"

// LoadUser resolves the session cookie to a user and stores it in the
// request locals. Requests without a valid session continue
// unauthenticated; RequireAuth is the gate.
func LoadUser(sessions session.Store, store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			return c.Next()
		}

		userID, err := sessions.Get(c.Context(), token)
		if err != nil {
			if err != session.ErrNotFound {
				log.Printf("⚠️  Session lookup failed: %v", err)
			}
			return c.Next()
		}

		user, err := store.GetUserByID(c.Context(), userID)
		if err != nil {
			// Session references a deleted user; treat as unauthenticated.
			return c.Next()
		}

		c.Locals("user", user)
		c.Locals("user_id", user.ID)
		c.Locals("session_token", token)
		return c.Next()
	}
}

// RequireAuth rejects requests that did not resolve to an authenticated
// user.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals("user").(*models.User); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user from the request locals, or
// nil when the request is unauthenticated.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
