package handlers

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"drishti/internal/middleware"
	"drishti/internal/models"
	"drishti/internal/session"
	"drishti/internal/storage"
	"drishti/pkg/password"
)

// AuthHandler handles registration, login, logout and current-user lookup.
type AuthHandler struct {
	store      storage.Store
	sessions   session.Store
	sessionTTL time.Duration
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(store storage.Store, sessions session.Store, sessionTTL time.Duration) *AuthHandler {
	if sessionTTL <= 0 {
		sessionTTL = session.DefaultTTL
	}
	return &AuthHandler{store: store, sessions: sessions, sessionTTL: sessionTTL}
}

// Register creates a new user account and logs it in.
// POST /api/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	// Check first so the common case gets a friendly message; the unique
	// index still catches races.
	if _, err := h.store.GetUserByUsername(c.Context(), req.Username); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Username already exists",
		})
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		log.Printf("❌ Failed to hash password: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	user, err := h.store.CreateUser(c.Context(), &req, hash)
	if err == storage.ErrUsernameTaken {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Username already exists",
		})
	}
	if err != nil {
		log.Printf("❌ Failed to create user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	if err := h.establishSession(c, user.ID); err != nil {
		log.Printf("❌ Failed to create session: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	log.Printf("✅ User registered: %s (%s)", user.Username, user.ID)

	return c.Status(fiber.StatusCreated).JSON(user.ToResponse())
}

// Login authenticates a user and establishes a session.
// POST /api/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	user, err := h.store.GetUserByUsername(c.Context(), req.Username)
	if err != nil || !password.Verify(user.Password, req.Password) {
		log.Printf("⚠️  Failed login attempt for user: %s", req.Username)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid username or password",
		})
	}

	if err := h.establishSession(c, user.ID); err != nil {
		log.Printf("❌ Failed to create session: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	log.Printf("✅ User logged in: %s (%s)", user.Username, user.ID)

	return c.JSON(user.ToResponse())
}

// Logout destroys the current session.
// POST /api/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token, ok := c.Locals("session_token").(string); ok && token != "" {
		if err := h.sessions.Destroy(c.Context(), token); err != nil {
			log.Printf("❌ Logout error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not log out",
			})
		}
	}

	c.ClearCookie(middleware.SessionCookie)

	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user.
// GET /api/user
func (h *AuthHandler) GetCurrentUser(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authenticated",
		})
	}
	return c.JSON(user.ToResponse())
}

// establishSession opens a session for the user and sets the cookie.
func (h *AuthHandler) establishSession(c *fiber.Ctx, userID string) error {
	token, err := h.sessions.Create(c.Context(), userID)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(h.sessionTTL),
		HTTPOnly: true,
		Secure:   os.Getenv("ENVIRONMENT") == "production",
		SameSite: "Lax",
		Path:     "/",
	})
	return nil
}
