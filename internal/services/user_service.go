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

var (
	// ErrUserNotFound is returned when no user matches the lookup
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when signing up with a registered email
	ErrEmailTaken = errors.New("email already registered")
)

// UserService handles user operations with MongoDB
type UserService struct {
	collection *mongo.Collection
}

// NewUserService creates a new user service
func NewUserService(db *database.MongoDB) *UserService {
	return &UserService{
		collection: db.Collection(database.CollectionUsers),
	}
}

// CreateUser inserts a new user and sets its ID and timestamps
func (s *UserService) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := s.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

// GetUserByID retrieves a user by their MongoDB ID
func (s *UserService) GetUserByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": userID})
}

// GetUsersByIDs retrieves every existing user among ids. Missing IDs are skipped.
func (s *UserService) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	opts := options.Find().SetProjection(bson.M{"passwordHash": 0})
	cursor, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// ListByRole returns users with the given role, most recently updated first
func (s *UserService) ListByRole(ctx context.Context, role models.Role, limit int64) ([]models.User, error) {
	opts := options.Find().
		SetProjection(bson.M{"passwordHash": 0}).
		SetSort(bson.M{"updatedAt": -1}).
		SetLimit(limit)

	cursor, err := s.collection.Find(ctx, bson.M{"role": role}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// UpdateProfileImage stores the path of a user's new profile image
func (s *UserService) UpdateProfileImage(ctx context.Context, userID primitive.ObjectID, imagePath string) error {
	return s.updateByID(ctx, userID, bson.M{"profileImage": imagePath})
}

// UpdatePasswordHash replaces the stored hash, used to upgrade legacy hashes
func (s *UserService) UpdatePasswordHash(ctx context.Context, userID primitive.ObjectID, hash string) error {
	return s.updateByID(ctx, userID, bson.M{"passwordHash": hash})
}

// UpdateProfile applies the non-nil fields of req and returns the updated user
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req *models.UpdateProfileRequest) (*models.User, error) {
	fields := bson.M{"updatedAt": time.Now()}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.Skills != nil {
		fields["skills"] = req.Skills
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": userID}, bson.M{"$set": fields}, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &user, nil
}

// SetProjectRequirements embeds the analyzed requirements on the user with the given email
func (s *UserService) SetProjectRequirements(ctx context.Context, email string, reqs *models.ProjectRequirements) error {
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"projectRequirements": reqs, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set project requirements: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListProfileImages returns every profile image path currently referenced
func (s *UserService) ListProfileImages(ctx context.Context) ([]string, error) {
	values, err := s.collection.Distinct(ctx, "profileImage", bson.M{"profileImage": bson.M{"$nin": bson.A{nil, ""}}})
	if err != nil {
		return nil, fmt.Errorf("failed to list profile images: %w", err)
	}

	paths := make([]string, 0, len(values))
	for _, v := range values {
		if p, ok := v.(string); ok {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// Count returns the total number of users
func (s *UserService) Count(ctx context.Context) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (s *UserService) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *UserService) updateByID(ctx context.Context, userID primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
