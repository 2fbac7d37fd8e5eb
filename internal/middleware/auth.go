package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/colisync/internal/config"
	"github.com/example/colisync/internal/utils"
)

// AccessTokenCookie is the session cookie name shared with the frontend.
const AccessTokenCookie = "access_token"

const (
	userContextKey  = "currentUserID"
	emailContextKey = "currentUserEmail"
)

// SessionGate validates the session token carried in the access_token
// cookie (or an Authorization header for non-browser clients) and loads the
// authenticated identity into context. An invalid or expired token clears
// the cookie so the client falls back to the login flow.
func SessionGate(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(AccessTokenCookie)
		if token == "" {
			if header := c.Get("Authorization"); header != "" {
				parts := strings.SplitN(header, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					token = parts[1]
				}
			}
		}

		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Utilisateur non authentifié")
		}

		userID, email, err := utils.ParseToken(cfg.JWTSecret, token)
		if err != nil {
			ClearSessionCookie(c)
			return fiber.NewError(fiber.StatusUnauthorized, "Session invalide ou expirée")
		}

		c.Locals(userContextKey, userID)
		c.Locals(emailContextKey, email)
		return c.Next()
	}
}

// SetSessionCookie delivers a freshly issued session token as an HTTP-only
// cookie scoped to the whole site.
func SetSessionCookie(c *fiber.Ctx, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Expires:  time.Now().Add(ttl),
	})
}

// ClearSessionCookie expires the session cookie. Tokens stay valid until
// natural expiry; there is no server-side revocation list.
func ClearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Expires:  time.Now().Add(-time.Hour),
	})
}

// GetCurrentUserID extracts the authenticated user ID from context.
func GetCurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	value := c.Locals(userContextKey)
	if value == nil {
		return uuid.Nil, false
	}

	if id, ok := value.(uuid.UUID); ok {
		return id, true
	}

	return uuid.Nil, false
}

// GetCurrentUserEmail extracts the authenticated email from context.
func GetCurrentUserEmail(c *fiber.Ctx) (string, bool) {
	value := c.Locals(emailContextKey)
	if value == nil {
		return "", false
	}

	email, ok := value.(string)
	return email, ok
}
