package middleware

import (
	"errors"
	"strings"

	"creatorsmeet/internal/models"
	"creatorsmeet/pkg/auth"

	"github.com/gofiber/fiber/v2"
)

// GateDecision is the outcome of routing a request through the gate
type GateDecision int

const (
	// Allow lets the request through
	Allow GateDecision = iota
	// RedirectLogin sends an unauthenticated visitor to the login page
	RedirectLogin
	// RedirectDashboard sends a signed-in visitor away from login and signup
	RedirectDashboard
)

func (d GateDecision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectDashboard:
		return "redirect-dashboard"
	}
	return "unknown"
}

// Paths reachable without a session
var publicPaths = map[string]bool{
	"/":                     true,
	"/login":                true,
	"/signup":               true,
	"/health":               true,
	"/metrics":              true,
	"/api/auth/signin":      true,
	"/api/auth/signup":      true,
	"/api/auth/logout":      true,
	"/api/test-db":          true,
	"/api/test-huggingface": true,
}

var publicPrefixes = []string{
	"/images/",
}

// Gate decides what to do with a request for path given whether it carries a
// session token. Only token presence is checked here; handlers verify it.
func Gate(path string, hasToken bool) GateDecision {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}

	if path == "/login" || path == "/signup" {
		if hasToken {
			return RedirectDashboard
		}
		return Allow
	}

	if hasToken || isPublic(path) {
		return Allow
	}
	return RedirectLogin
}

func isPublic(path string) bool {
	if publicPaths[path] {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// RouteGate applies Gate to every request. Page routes are redirected; API
// routes get a 401 instead of a redirect. The tips feed is readable by anyone.
func RouteGate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if c.Method() == fiber.MethodGet && path == "/api/tips" {
			return c.Next()
		}

		hasToken := c.Cookies(auth.CookieName) != ""

		switch Gate(path, hasToken) {
		case RedirectDashboard:
			return c.Redirect("/dashboard", fiber.StatusFound)
		case RedirectLogin:
			if strings.HasPrefix(path, "/api/") {
				return unauthorized(c, "Not authenticated")
			}
			return c.Redirect("/login", fiber.StatusFound)
		}
		return c.Next()
	}
}

// ErrorEnvelope writes err in the shared {"message": ...} shape.
// Used as the Fiber app's ErrorHandler.
func ErrorEnvelope(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		if code < fiber.StatusInternalServerError {
			message = e.Message
		}
	}

	return c.Status(code).JSON(models.ErrorResponse{Message: message})
}
