package handlers

import (
	"creatorsmeet/internal/middleware"
	"creatorsmeet/pkg/auth"

	"github.com/gofiber/fiber/v2"
)

// Router wires the handlers to their routes
type Router struct {
	Sessions    *auth.SessionAuth
	Revocations middleware.RevocationChecker
	RateLimits  *middleware.RateLimitConfig // nil disables the per-route limiters

	Auth         *AuthHandler
	Tips         *TipHandler
	Users        *UserHandler
	Requirements *ProjectRequirementsHandler
	Projects     *ProjectHandler
	Diagnostics  *DiagnosticsHandler
	Health       *HealthHandler
}

// Register mounts every route on app
func (r *Router) Register(app *fiber.App) {
	authLimiter, analysisLimiter, uploadLimiter := passthrough, passthrough, passthrough
	if r.RateLimits != nil {
		authLimiter = middleware.AuthAttemptRateLimiter(r.RateLimits)
		analysisLimiter = middleware.AnalysisRateLimiter(r.RateLimits)
		uploadLimiter = middleware.UploadRateLimiter(r.RateLimits)
	}
	requireAuth := middleware.RequireAuth(r.Sessions, r.Revocations)

	if r.Health != nil {
		app.Get("/health", r.Health.Handle)
	}

	api := app.Group("/api")

	if r.Diagnostics != nil {
		api.Get("/test-db", r.Diagnostics.TestDB)
		api.Get("/test-huggingface", r.Diagnostics.TestHuggingFace)
	}

	// Auth routes
	authRoutes := api.Group("/auth")
	authRoutes.Post("/signup", authLimiter, r.Auth.Signup)
	authRoutes.Post("/signin", authLimiter, r.Auth.Signin)
	authRoutes.Post("/logout", r.Auth.Logout)
	authRoutes.Get("/me", requireAuth, r.Auth.Me)

	// Tips feed
	api.Get("/tips", r.Tips.List)
	api.Post("/tips", requireAuth, r.Tips.Create)
	api.Post("/tips/:id/like", requireAuth, r.Tips.ToggleLike)
	api.Delete("/tips/:id", requireAuth, r.Tips.Delete)

	// Profile
	api.Post("/user/profile-image", requireAuth, uploadLimiter, r.Users.UploadProfileImage)
	api.Put("/user/profile", requireAuth, r.Users.UpdateProfile)

	// Requirement analysis
	requirements := api.Group("/project-requirements", requireAuth, analysisLimiter)
	requirements.Post("/analyze", r.Requirements.Analyze)
	requirements.Post("/update", r.Requirements.Update)
	requirements.Post("/match", r.Requirements.Match)

	// Projects
	projects := api.Group("/projects", requireAuth)
	projects.Get("/", r.Projects.List)
	projects.Get("/:id", r.Projects.Get)
	projects.Patch("/:id", r.Projects.Update)
}

func passthrough(c *fiber.Ctx) error {
	return c.Next()
}
