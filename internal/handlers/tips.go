package handlers

import (
	"errors"
	"log"

	"creatorsmeet/internal/models"
	"creatorsmeet/internal/services"

	"github.com/gofiber/fiber/v2"
)

// tipsPageSize caps the feed
const tipsPageSize = 100

// TipHandler handles the mentor tips feed
type TipHandler struct {
	tips    TipStore
	users   UserStore
	metrics *services.Metrics
}

// NewTipHandler creates a new tip handler
func NewTipHandler(tips TipStore, users UserStore, metrics *services.Metrics) *TipHandler {
	return &TipHandler{tips: tips, users: users, metrics: metrics}
}

// List returns the feed, newest first
// GET /api/tips
func (h *TipHandler) List(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	tips, err := h.tips.List(ctx, tipsPageSize)
	if err != nil {
		return internalError(c, "list_tips", err)
	}
	return c.JSON(tips)
}

// Create posts a tip. Only mentors may post.
// POST /api/tips
func (h *TipHandler) Create(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	// The stored role is authoritative; the token's copy may be stale
	user, err := h.users.GetUserByID(ctx, userID)
	if errors.Is(err, services.ErrUserNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return internalError(c, "create_tip", err)
	}
	if user.Role != models.RoleMentor {
		return errorJSON(c, fiber.StatusForbidden, "Only mentors can post tips")
	}

	var req models.CreateTipRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	tip, err := h.tips.Create(ctx, user, req.Content)
	if err != nil {
		return internalError(c, "create_tip", err)
	}

	h.metrics.RecordTipCreated()
	log.Printf("💡 [TIPS] Tip %s posted by %s", tip.ID, user.Email)

	return c.Status(fiber.StatusCreated).JSON(tip)
}

// ToggleLike likes a tip, or removes the like if the caller already liked it
// POST /api/tips/:id/like
func (h *TipHandler) ToggleLike(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Not authenticated")
	}
	tipID, ok := pathObjectID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid tip ID")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tip, err := h.tips.ToggleLike(ctx, tipID, userID)
	if errors.Is(err, services.ErrTipNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Tip not found")
	}
	if err != nil {
		return internalError(c, "like_tip", err)
	}
	return c.JSON(tip)
}

// Delete removes a tip. Only its author may delete it.
// DELETE /api/tips/:id
func (h *TipHandler) Delete(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Not authenticated")
	}
	tipID, ok := pathObjectID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid tip ID")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tip, err := h.tips.Get(ctx, tipID)
	if errors.Is(err, services.ErrTipNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Tip not found")
	}
	if err != nil {
		return internalError(c, "delete_tip", err)
	}
	if tip.Author != userID {
		return errorJSON(c, fiber.StatusForbidden, "Only the author can delete this tip")
	}

	if err := h.tips.Delete(ctx, tipID); err != nil {
		if errors.Is(err, services.ErrTipNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Tip not found")
		}
		return internalError(c, "delete_tip", err)
	}

	log.Printf("🗑️  [TIPS] Tip %s deleted by its author", tipID.Hex())
	return c.JSON(fiber.Map{"message": "Tip deleted"})
}
