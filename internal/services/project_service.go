package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"creatorsmeet/internal/database"
	"creatorsmeet/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultProjectName names the project created by a requirements update without a name
const DefaultProjectName = "My Project"

// ErrProjectNotFound is returned when no project matches the lookup
var ErrProjectNotFound = errors.New("project not found")

// ProjectService handles project documents
type ProjectService struct {
	collection *mongo.Collection
	users      *UserService
}

// NewProjectService creates a new project service
func NewProjectService(db *database.MongoDB, users *UserService) *ProjectService {
	return &ProjectService{
		collection: db.Collection(database.CollectionProjects),
		users:      users,
	}
}

// UpsertRequirements creates or updates the innovator's project named name
// with a new description and analysis. The project is keyed by innovator email and name.
func (s *ProjectService) UpsertRequirements(ctx context.Context, innovator *models.User, name, description string, analysis *models.AnalysisResult) (*models.Project, error) {
	if name == "" {
		name = DefaultProjectName
	}
	now := time.Now()

	filter := bson.M{"innovatorEmail": innovator.Email, "name": name}
	update := bson.M{
		"$set": bson.M{
			"description":  description,
			"technologies": analysis.Technologies,
			"analysis":     analysis,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"innovator":  innovator.ID,
			"status":     models.ProjectPlanning,
			"budget":     models.Budget{},
			"milestones": bson.A{},
			"tasks":      bson.A{},
			"progress":   0,
			"createdAt":  now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var project models.Project
	if err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&project); err != nil {
		return nil, fmt.Errorf("failed to upsert project: %w", err)
	}
	return &project, nil
}

// ListForUser returns projects the user owns or develops, most recently updated first
func (s *ProjectService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.ProjectResponse, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"innovator": userID},
		bson.M{"developer": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}

	var ids []primitive.ObjectID
	for i := range projects {
		ids = append(ids, projects[i].ReferencedUserIDs()...)
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]models.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		responses = append(responses, models.PopulateProject(p, users))
	}
	return responses, nil
}

// Get retrieves a project without populating references
func (s *ProjectService) Get(ctx context.Context, projectID primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := s.collection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &project, nil
}

// GetPopulated retrieves a project with its user references resolved
func (s *ProjectService) GetPopulated(ctx context.Context, projectID primitive.ObjectID) (*models.ProjectResponse, error) {
	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, project)
}

// Update applies the non-nil fields of req and touches updatedAt.
// Milestone and task changes naming an unknown ID are ignored.
func (s *ProjectService) Update(ctx context.Context, projectID primitive.ObjectID, req *models.UpdateProjectRequest) (*models.ProjectResponse, error) {
	fields := bson.M{"updatedAt": time.Now()}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Progress != nil {
		if !models.ValidProgress(*req.Progress) {
			return nil, fmt.Errorf("progress %d outside [0,100]", *req.Progress)
		}
		fields["progress"] = *req.Progress
	}
	if req.Budget != nil {
		fields["budget"] = *req.Budget
	}
	if req.DeveloperID != nil {
		devID, err := primitive.ObjectIDFromHex(*req.DeveloperID)
		if err != nil {
			return nil, fmt.Errorf("invalid developer id: %w", err)
		}
		fields["developer"] = devID
	}

	var filters []interface{}
	for i, change := range req.Milestones {
		id, err := primitive.ObjectIDFromHex(change.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid milestone id: %w", err)
		}
		fields[fmt.Sprintf("milestones.$[m%d].status", i)] = change.Status
		filters = append(filters, bson.M{fmt.Sprintf("m%d._id", i): id})
	}
	for i, change := range req.Tasks {
		id, err := primitive.ObjectIDFromHex(change.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid task id: %w", err)
		}
		fields[fmt.Sprintf("tasks.$[t%d].status", i)] = change.Status
		filters = append(filters, bson.M{fmt.Sprintf("t%d._id", i): id})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if len(filters) > 0 {
		opts.SetArrayFilters(options.ArrayFilters{Filters: filters})
	}
	var project models.Project
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": projectID}, bson.M{"$set": fields}, opts).Decode(&project)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return s.populate(ctx, &project)
}

func (s *ProjectService) populate(ctx context.Context, project *models.Project) (*models.ProjectResponse, error) {
	users, err := s.users.GetUsersByIDs(ctx, project.ReferencedUserIDs())
	if err != nil {
		return nil, err
	}
	resp := models.PopulateProject(*project, users)
	return &resp, nil
}
