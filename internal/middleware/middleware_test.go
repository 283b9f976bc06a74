package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"creatorsmeet/internal/models"
	"creatorsmeet/internal/services"
	"creatorsmeet/pkg/auth"

	"github.com/gofiber/fiber/v2"
)

func TestGate(t *testing.T) {
	tests := []struct {
		path     string
		hasToken bool
		expected GateDecision
	}{
		{"/", false, Allow},
		{"/login", false, Allow},
		{"/signup", false, Allow},
		{"/login", true, RedirectDashboard},
		{"/signup/", true, RedirectDashboard},
		{"/dashboard", false, RedirectLogin},
		{"/dashboard", true, Allow},
		{"/api/auth/signin", false, Allow},
		{"/api/auth/signup", false, Allow},
		{"/api/tips", false, RedirectLogin},
		{"/api/projects/abc", true, Allow},
		{"/api/test-db", false, Allow},
		{"/api/test-huggingface", false, Allow},
		{"/images/profiles/a.png", false, Allow},
		{"/imagesx", false, RedirectLogin},
		{"/health", false, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Gate(tt.path, tt.hasToken); got != tt.expected {
				t.Errorf("Gate(%q, %v) = %v, want %v", tt.path, tt.hasToken, got, tt.expected)
			}
		})
	}
}

func newGateApp() *fiber.App {
	app := fiber.New()
	app.Use(RouteGate())
	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }
	app.Get("/dashboard", ok)
	app.Get("/login", ok)
	app.Get("/api/tips", ok)
	app.Post("/api/tips", ok)
	app.Get("/api/projects", ok)
	return app
}

func TestRouteGate_PageRedirects(t *testing.T) {
	app := newGateApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/dashboard", nil), -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/login" {
		t.Errorf("Expected 302 to /login, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "anything"})
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/dashboard" {
		t.Errorf("Expected 302 to /dashboard, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestRouteGate_APIGets401(t *testing.T) {
	app := newGateApp()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/projects", nil), -1)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", resp.StatusCode)
	}
	assertMessage(t, resp, "Not authenticated")

	resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/api/tips", nil), -1)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 for anonymous tip post, got %d", resp.StatusCode)
	}
}

func TestRouteGate_TipsFeedIsPublic(t *testing.T) {
	app := newGateApp()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/tips", nil), -1)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 for public feed, got %d", resp.StatusCode)
	}
}

func newAuthApp(t *testing.T, revocations RevocationChecker) (*fiber.App, *auth.SessionAuth) {
	t.Helper()
	sessions, err := auth.NewSessionAuth("middleware-secret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create session auth: %v", err)
	}

	app := fiber.New()
	app.Get("/me", RequireAuth(sessions, revocations), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"id":    UserID(c),
			"email": UserEmail(c),
			"role":  c.Locals(LocalUserRole),
			"jti":   c.Locals(LocalTokenID),
		})
	})
	app.Get("/mentors", RequireAuth(sessions, revocations), RequireRole(models.RoleMentor), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app, sessions
}

func withToken(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	return req
}

func TestRequireAuth(t *testing.T) {
	revocations := services.NewMemoryRevocationStore()
	app, sessions := newAuthApp(t, revocations)

	session, err := sessions.Issue("507f1f77bcf86cd799439011", "dev@example.com", "Dev", "developer")
	if err != nil {
		t.Fatalf("Failed to issue: %v", err)
	}

	t.Run("missing cookie", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil), -1)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		resp, _ := app.Test(withToken(httptest.NewRequest(http.MethodGet, "/me", nil), "not.a.jwt"), -1)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", resp.StatusCode)
		}
		assertMessage(t, resp, "Invalid or expired token")
	})

	t.Run("valid token", func(t *testing.T) {
		resp, _ := app.Test(withToken(httptest.NewRequest(http.MethodGet, "/me", nil), session.Token), -1)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		var body map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode: %v", err)
		}
		if body["email"] != "dev@example.com" || body["role"] != "developer" || body["jti"] != session.TokenID {
			t.Errorf("Unexpected locals: %v", body)
		}
	})

	t.Run("wrong role", func(t *testing.T) {
		resp, _ := app.Test(withToken(httptest.NewRequest(http.MethodGet, "/mentors", nil), session.Token), -1)
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", resp.StatusCode)
		}
	})

	t.Run("revoked token", func(t *testing.T) {
		_ = revocations.Revoke(context.Background(), session.TokenID, session.ExpiresAt)
		resp, _ := app.Test(withToken(httptest.NewRequest(http.MethodGet, "/me", nil), session.Token), -1)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected 401 after revocation, got %d", resp.StatusCode)
		}
	})
}

func TestRequireAuth_NilRevocations(t *testing.T) {
	app, sessions := newAuthApp(t, nil)
	session, _ := sessions.Issue("507f1f77bcf86cd799439011", "m@example.com", "M", "mentor")

	resp, _ := app.Test(withToken(httptest.NewRequest(http.MethodGet, "/mentors", nil), session.Token), -1)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestErrorEnvelope(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorEnvelope})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return io.ErrUnexpectedEOF
	})

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil), -1)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", resp.StatusCode)
	}
	assertMessage(t, resp, "Internal server error")
}

func assertMessage(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	var body models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if body.Message != expected {
		t.Errorf("Expected message %q, got %q", expected, body.Message)
	}
}
