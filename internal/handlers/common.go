package handlers

import (
	"context"
	"log/slog"
	"time"

	"creatorsmeet/internal/logging"
	"creatorsmeet/internal/middleware"
	"creatorsmeet/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// requestTimeout bounds the database and model work of a single request
const requestTimeout = 30 * time.Second

// UserStore is the user persistence the handlers need
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, userID primitive.ObjectID, hash string) error
	UpdateProfileImage(ctx context.Context, userID primitive.ObjectID, imagePath string) error
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, req *models.UpdateProfileRequest) (*models.User, error)
	SetProjectRequirements(ctx context.Context, email string, reqs *models.ProjectRequirements) error
}

// TipStore is the tips feed persistence
type TipStore interface {
	List(ctx context.Context, limit int64) ([]models.TipResponse, error)
	Create(ctx context.Context, author *models.User, content string) (*models.TipResponse, error)
	Get(ctx context.Context, tipID primitive.ObjectID) (*models.Tip, error)
	ToggleLike(ctx context.Context, tipID, userID primitive.ObjectID) (*models.TipResponse, error)
	Delete(ctx context.Context, tipID primitive.ObjectID) error
}

// ProjectStore is the project persistence
type ProjectStore interface {
	UpsertRequirements(ctx context.Context, innovator *models.User, name, description string, analysis *models.AnalysisResult) (*models.Project, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.ProjectResponse, error)
	Get(ctx context.Context, projectID primitive.ObjectID) (*models.Project, error)
	GetPopulated(ctx context.Context, projectID primitive.ObjectID) (*models.ProjectResponse, error)
	Update(ctx context.Context, projectID primitive.ObjectID, req *models.UpdateProjectRequest) (*models.ProjectResponse, error)
}

// Analyzer turns project descriptions into requirements and developer matches
type Analyzer interface {
	Analyze(ctx context.Context, description string) (*models.AnalysisResult, error)
	MatchDevelopers(ctx context.Context, description string, limit int) ([]models.DeveloperMatch, error)
}

// errorJSON writes the shared error envelope
func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{Message: message})
}

// internalError logs err with request context and writes a generic 500
func internalError(c *fiber.Ctx, operation string, err error) error {
	requestLogger(c, operation).Error("request failed", "path", c.Path(), "error", err)
	return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
}

func requestLogger(c *fiber.Ctx, operation string) *slog.Logger {
	requestID, _ := c.Locals("requestid").(string)
	return logging.WithOperation(logging.WithRequest(requestID, middleware.UserID(c)), operation)
}

// requestContext derives a bounded context from the request
func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), requestTimeout)
}

// sessionUserID parses the authenticated user ID set by RequireAuth
func sessionUserID(c *fiber.Ctx) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(middleware.UserID(c))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// pathObjectID parses the :id route parameter
func pathObjectID(c *fiber.Ctx) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
