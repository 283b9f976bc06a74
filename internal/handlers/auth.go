package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"creatorsmeet/internal/models"
	"creatorsmeet/internal/services"
	"creatorsmeet/pkg/auth"

	"github.com/gofiber/fiber/v2"
)

// invalidCredentials is returned for both unknown emails and wrong passwords
const invalidCredentials = "Invalid email or password"

// Revoker invalidates session token IDs
type Revoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
}

// AuthHandler handles signup, signin, logout and the current-user lookup
type AuthHandler struct {
	sessions      *auth.SessionAuth
	users         UserStore
	revocations   Revoker
	metrics       *services.Metrics
	secureCookies bool
}

// NewAuthHandler creates a new auth handler. revocations and metrics may be nil.
func NewAuthHandler(sessions *auth.SessionAuth, users UserStore, revocations Revoker, metrics *services.Metrics, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		sessions:      sessions,
		users:         users,
		revocations:   revocations,
		metrics:       metrics,
		secureCookies: secureCookies,
	}
}

// Signup creates an account and starts a session
// POST /api/auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return internalError(c, "signup", err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user := &models.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         req.Role,
	}
	if err := h.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return errorJSON(c, fiber.StatusConflict, "User with this email already exists")
		}
		return internalError(c, "signup", err)
	}

	if err := h.startSession(c, user); err != nil {
		return internalError(c, "signup", err)
	}

	h.metrics.RecordSignup()
	log.Printf("✅ [AUTH] User registered: %s (%s, %s)", user.Email, user.ID.Hex(), user.Role)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created successfully",
		"user":    user.ToResponse(),
	})
}

// Signin verifies credentials and starts a session
// POST /api/auth/signin
func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req models.SigninRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Email and password are required")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, services.ErrUserNotFound) {
		h.metrics.RecordSignin("invalid_credentials")
		return errorJSON(c, fiber.StatusUnauthorized, invalidCredentials)
	}
	if err != nil {
		h.metrics.RecordSignin("error")
		return internalError(c, "signin", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		log.Printf("⚠️  [AUTH] Unreadable password hash for %s: %v", user.ID.Hex(), err)
	}
	if !valid {
		log.Printf("⚠️  [AUTH] Failed signin attempt for: %s", req.Email)
		h.metrics.RecordSignin("invalid_credentials")
		return errorJSON(c, fiber.StatusUnauthorized, invalidCredentials)
	}

	if auth.NeedsRehash(user.PasswordHash) {
		h.upgradePasswordHash(ctx, user, req.Password)
	}

	if err := h.startSession(c, user); err != nil {
		h.metrics.RecordSignin("error")
		return internalError(c, "signin", err)
	}

	h.metrics.RecordSignin("success")
	log.Printf("✅ [AUTH] User signed in: %s (%s)", user.Email, user.ID.Hex())

	return c.JSON(fiber.Map{
		"message": "Signed in successfully",
		"user":    user.ToResponse(),
	})
}

// Logout ends the session. The cookie is always cleared; a valid token is
// also revoked so it cannot be replayed before it expires.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(auth.CookieName); token != "" && h.revocations != nil {
		if claims, err := h.sessions.Verify(token); err == nil && claims.ExpiresAt != nil {
			ctx, cancel := requestContext(c)
			defer cancel()

			if err := h.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
				return internalError(c, "logout", err)
			}
			log.Printf("👋 [AUTH] User signed out: %s", claims.Email)
		}
	}

	h.clearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// Me returns the signed-in user
// GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.GetUserByID(ctx, userID)
	if errors.Is(err, services.ErrUserNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return internalError(c, "me", err)
	}

	return c.JSON(fiber.Map{"user": user.ToResponse()})
}

func (h *AuthHandler) startSession(c *fiber.Ctx, user *models.User) error {
	session, err := h.sessions.Issue(user.ID.Hex(), user.Email, user.Name, string(user.Role))
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    session.Token,
		Expires:  session.ExpiresAt,
		MaxAge:   int(h.sessions.Expiry().Seconds()),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})
	return nil
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})
}

// upgradePasswordHash replaces a legacy bcrypt hash after a successful signin
func (h *AuthHandler) upgradePasswordHash(ctx context.Context, user *models.User, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Printf("⚠️  [AUTH] Failed to rehash password for %s: %v", user.ID.Hex(), err)
		return
	}
	if err := h.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		log.Printf("⚠️  [AUTH] Failed to store upgraded hash for %s: %v", user.ID.Hex(), err)
		return
	}
	log.Printf("🔐 [AUTH] Upgraded legacy password hash for %s", user.ID.Hex())
}
