package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/auth"
)

// SessionCookieName is the cookie the session token travels in.
const SessionCookieName = "jwt"

const principalKey = "principal"

// RequireAuth verifies the session cookie and stashes the caller's
// Principal for the handler. Handlers read it back with PrincipalFrom and
// pass it explicitly into the service layer.
func RequireAuth(tokens *auth.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookieName)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized - no token provided"})
		}
		userID, err := tokens.Verify(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized - invalid token"})
		}
		oid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized - invalid token"})
		}
		c.Locals(principalKey, auth.Principal{UserID: oid})
		return c.Next()
	}
}

// PrincipalFrom returns the authenticated principal set by RequireAuth.
func PrincipalFrom(c *fiber.Ctx) (auth.Principal, bool) {
	p, ok := c.Locals(principalKey).(auth.Principal)
	return p, ok
}
