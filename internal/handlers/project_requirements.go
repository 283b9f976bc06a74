package handlers

import (
	"errors"
	"log"

	"creatorsmeet/internal/middleware"
	"creatorsmeet/internal/models"
	"creatorsmeet/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProjectRequirementsHandler handles AI-assisted requirement analysis
type ProjectRequirementsHandler struct {
	analyzer Analyzer
	projects ProjectStore
	users    UserStore
}

// NewProjectRequirementsHandler creates a new project requirements handler
func NewProjectRequirementsHandler(analyzer Analyzer, projects ProjectStore, users UserStore) *ProjectRequirementsHandler {
	return &ProjectRequirementsHandler{
		analyzer: analyzer,
		projects: projects,
		users:    users,
	}
}

// Analyze classifies a project description without saving anything
// POST /api/project-requirements/analyze
func (h *ProjectRequirementsHandler) Analyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	analysis, err := h.analyzer.Analyze(ctx, req.ProjectDescription)
	if err != nil {
		return internalError(c, "analyze_requirements", err)
	}

	return c.JSON(fiber.Map{"analysis": analysis})
}

// Update analyzes a description and saves it on the caller's project and profile.
// The two writes are independent; a failure after the first leaves it in place.
// POST /api/project-requirements/update
func (h *ProjectRequirementsHandler) Update(c *fiber.Ctx) error {
	var req models.UpdateRequirementsRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	if req.Email != middleware.UserEmail(c) {
		log.Printf("🚫 [REQUIREMENTS] %s tried to update requirements of %s", middleware.UserEmail(c), req.Email)
		return errorJSON(c, fiber.StatusForbidden, "You can only update your own requirements")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	analysis, err := h.analyzer.Analyze(ctx, req.ProjectDescription)
	if err != nil {
		return internalError(c, "update_requirements", err)
	}

	user, err := h.users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, services.ErrUserNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return internalError(c, "update_requirements", err)
	}

	project, err := h.projects.UpsertRequirements(ctx, user, req.ProjectName, req.ProjectDescription, analysis)
	if err != nil {
		return internalError(c, "update_requirements", err)
	}

	if err := h.users.SetProjectRequirements(ctx, user.Email, analysis.Requirements(req.ProjectDescription)); err != nil {
		return internalError(c, "update_requirements", err)
	}

	log.Printf("🧠 [REQUIREMENTS] Saved analysis for %s: %d technologies, %s", user.Email, len(analysis.Technologies), analysis.Complexity)

	return c.JSON(fiber.Map{
		"message":  "Project requirements updated",
		"analysis": analysis,
		"project":  project,
	})
}

// Match ranks developers against a project description
// POST /api/project-requirements/match
func (h *ProjectRequirementsHandler) Match(c *fiber.Ctx) error {
	var req models.MatchDevelopersRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	matches, err := h.analyzer.MatchDevelopers(ctx, req.ProjectDescription, req.Limit)
	if errors.Is(err, services.ErrNoDevelopers) {
		return c.JSON(fiber.Map{"matches": []models.DeveloperMatch{}})
	}
	if err != nil {
		return internalError(c, "match_developers", err)
	}

	return c.JSON(fiber.Map{"matches": matches})
}
