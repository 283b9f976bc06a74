package middleware

import (
	"context"
	"log"

	"creatorsmeet/internal/models"
	"creatorsmeet/pkg/auth"

	"github.com/gofiber/fiber/v2"
)

// Keys of the values RequireAuth stores in c.Locals
const (
	LocalUserID    = "user_id"
	LocalUserEmail = "user_email"
	LocalUserName  = "user_name"
	LocalUserRole  = "user_role"
	LocalTokenID   = "token_jti"
	LocalTokenExp  = "token_exp"
)

// TokenVerifier checks a session token and returns its claims
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RevocationChecker reports whether a session token ID was revoked
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RequireAuth verifies the session cookie and stores the caller's identity
// in c.Locals. A missing, invalid, expired or revoked token is a 401.
// revocations may be nil.
func RequireAuth(verifier TokenVerifier, revocations RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(auth.CookieName)
		if token == "" {
			return unauthorized(c, "Not authenticated")
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			log.Printf("❌ [AUTH] Token rejected on %s: %v", c.Path(), err)
			return unauthorized(c, "Invalid or expired token")
		}

		if revocations != nil {
			revoked, err := revocations.IsRevoked(c.UserContext(), claims.ID)
			if err != nil {
				log.Printf("⚠️  [AUTH] Revocation check failed: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Internal server error"})
			}
			if revoked {
				return unauthorized(c, "Session has ended")
			}
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUserEmail, claims.Email)
		c.Locals(LocalUserName, claims.Name)
		c.Locals(LocalUserRole, claims.Role)
		c.Locals(LocalTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Locals(LocalTokenExp, claims.ExpiresAt.Time)
		}

		return c.Next()
	}
}

// RequireRole rejects callers whose session role is not one of roles with 403.
// Must run after RequireAuth.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalUserRole).(string)
		for _, allowed := range roles {
			if models.Role(role) == allowed {
				return c.Next()
			}
		}
		log.Printf("🚫 [AUTH] Role %q denied on %s", role, c.Path())
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{Message: "Forbidden"})
	}
}

// UserID returns the authenticated user ID, or "" when unauthenticated
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// UserEmail returns the authenticated user's email
func UserEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(LocalUserEmail).(string)
	return email
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: message})
}
