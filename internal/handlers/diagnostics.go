package handlers

import (
	"context"
	"log"
	"time"

	"creatorsmeet/internal/huggingface"

	"github.com/gofiber/fiber/v2"
)

// DatabaseProbe reports database reachability and size
type DatabaseProbe interface {
	Ping(ctx context.Context) error
	Name() string
}

// UserCounter counts stored users
type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Classifier scores candidate labels against text
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string, multiLabel bool) (*huggingface.Classification, error)
}

// DiagnosticsHandler serves the connectivity test endpoints
type DiagnosticsHandler struct {
	db         DatabaseProbe
	users      UserCounter
	classifier Classifier
}

// NewDiagnosticsHandler creates a new diagnostics handler
func NewDiagnosticsHandler(db DatabaseProbe, users UserCounter, classifier Classifier) *DiagnosticsHandler {
	return &DiagnosticsHandler{db: db, users: users, classifier: classifier}
}

// TestDB pings the database and counts users
// GET /api/test-db
func (h *DiagnosticsHandler) TestDB(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		log.Printf("❌ [DIAG] Database ping failed: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Database connection failed")
	}

	count, err := h.users.Count(ctx)
	if err != nil {
		log.Printf("❌ [DIAG] User count failed: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Database connection failed")
	}

	return c.JSON(fiber.Map{
		"message":    "Database connection successful",
		"database":   h.db.Name(),
		"userCount":  count,
		"latency_ms": time.Since(start).Milliseconds(),
	})
}

// TestHuggingFace runs a tiny classification against the hosted model
// GET /api/test-huggingface
func (h *DiagnosticsHandler) TestHuggingFace(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	start := time.Now()
	result, err := h.classifier.Classify(ctx,
		"I want to build a mobile app for tracking fitness goals",
		[]string{"mobile development", "web development", "data science"},
		false,
	)
	if err != nil {
		log.Printf("❌ [DIAG] Classification test failed: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Hugging Face API test failed")
	}

	best, _ := result.Best()
	return c.JSON(fiber.Map{
		"message":    "Hugging Face API connection successful",
		"result":     result,
		"best":       best,
		"latency_ms": time.Since(start).Milliseconds(),
	})
}
