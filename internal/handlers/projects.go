package handlers

import (
	"errors"
	"log"

	"creatorsmeet/internal/models"
	"creatorsmeet/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProjectHandler handles project endpoints
type ProjectHandler struct {
	projects ProjectStore
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projects ProjectStore) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// List returns the projects the caller owns or develops
// GET /api/projects
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	projects, err := h.projects.ListForUser(ctx, userID)
	if err != nil {
		return internalError(c, "list_projects", err)
	}
	if projects == nil {
		projects = []models.ProjectResponse{}
	}
	return c.JSON(projects)
}

// Get returns a project with its participants populated
// GET /api/projects/:id
func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	projectID, ok := pathObjectID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid project ID")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	project, err := h.projects.GetPopulated(ctx, projectID)
	if errors.Is(err, services.ErrProjectNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Project not found")
	}
	if err != nil {
		return internalError(c, "get_project", err)
	}
	return c.JSON(project)
}

// Update changes status, progress, budget or the assigned developer.
// Only the project's innovator may update it.
// PATCH /api/projects/:id
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Not authenticated")
	}
	projectID, ok := pathObjectID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid project ID")
	}

	var req models.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	if req.IsEmpty() {
		return errorJSON(c, fiber.StatusBadRequest, "No changes provided")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	existing, err := h.projects.Get(ctx, projectID)
	if errors.Is(err, services.ErrProjectNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Project not found")
	}
	if err != nil {
		return internalError(c, "update_project", err)
	}
	if existing.Innovator != userID {
		return errorJSON(c, fiber.StatusForbidden, "Only the project owner can update it")
	}

	updated, err := h.projects.Update(ctx, projectID, &req)
	if errors.Is(err, services.ErrProjectNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Project not found")
	}
	if err != nil {
		return internalError(c, "update_project", err)
	}

	log.Printf("📋 [PROJECTS] Project %s updated by %s", projectID.Hex(), userID.Hex())
	return c.JSON(updated)
}
