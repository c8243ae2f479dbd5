package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/shield/internal/directory"
	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
)

const (
	// LocalUserID is the key to retrieve the user id from context
	LocalUserID = "user_id"
	// LocalUsername is the key to retrieve the username from context
	LocalUsername = "username"
	// LocalRole is the key to retrieve the user role from context
	LocalRole = "role"
)

// TokenValidator validates a bearer token into claims
type TokenValidator interface {
	ValidateToken(tokenString string) (*directory.Claims, error)
}

// Auth creates an authentication middleware using bearer JWT tokens
func Auth(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return domain.ErrUnauthorized
		}

		// Validation errors all map to 401; don't reveal which check failed
		claims, err := tokens.ValidateToken(token)
		if err != nil {
			return domain.ErrUnauthorized
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalRole, claims.Role)

		return c.Next()
	}
}

// AdminOnly rejects requests whose token does not carry the admin role.
// Must run after Auth.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(string)
		if !ok || role != domain.RoleAdmin {
			return domain.ErrForbidden
		}
		return c.Next()
	}
}

// extractBearerToken extracts the token from the Authorization header,
// falling back to the token query parameter. Browsers cannot set headers
// on a WebSocket upgrade, so the realtime channel uses the query form.
func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if auth == "" {
		return c.Query("token")
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// GetUsername retrieves the authenticated username from Fiber context
func GetUsername(c *fiber.Ctx) (string, error) {
	username, ok := c.Locals(LocalUsername).(string)
	if !ok || username == "" {
		return "", domain.ErrUnauthorized
	}
	return username, nil
}
