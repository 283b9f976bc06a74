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

// ErrTipNotFound is returned when no tip matches the lookup
var ErrTipNotFound = errors.New("tip not found")

// TipService handles the mentor tips feed
type TipService struct {
	collection *mongo.Collection
	users      *UserService
}

// NewTipService creates a new tip service
func NewTipService(db *database.MongoDB, users *UserService) *TipService {
	return &TipService{
		collection: db.Collection(database.CollectionTips),
		users:      users,
	}
}

// List returns tips newest first with authors populated
func (s *TipService) List(ctx context.Context, limit int64) ([]models.TipResponse, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tips: %w", err)
	}
	defer cursor.Close(ctx)

	var tips []models.Tip
	if err := cursor.All(ctx, &tips); err != nil {
		return nil, fmt.Errorf("failed to decode tips: %w", err)
	}

	authors, err := s.users.GetUsersByIDs(ctx, models.AuthorIDs(tips))
	if err != nil {
		return nil, err
	}

	return models.PopulateTips(tips, authors), nil
}

// Create stores a tip written by author and returns it populated
func (s *TipService) Create(ctx context.Context, author *models.User, content string) (*models.TipResponse, error) {
	tip := models.Tip{
		ID:        primitive.NewObjectID(),
		Content:   content,
		Author:    author.ID,
		Likes:     []primitive.ObjectID{},
		CreatedAt: time.Now(),
	}

	if _, err := s.collection.InsertOne(ctx, tip); err != nil {
		return nil, fmt.Errorf("failed to create tip: %w", err)
	}

	populated := models.PopulateTips([]models.Tip{tip}, []models.User{*author})
	return &populated[0], nil
}

// Get retrieves a single tip
func (s *TipService) Get(ctx context.Context, tipID primitive.ObjectID) (*models.Tip, error) {
	var tip models.Tip
	err := s.collection.FindOne(ctx, bson.M{"_id": tipID}).Decode(&tip)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tip: %w", err)
	}
	return &tip, nil
}

// ToggleLike adds userID to the tip's likes, or removes it if already present
func (s *TipService) ToggleLike(ctx context.Context, tipID, userID primitive.ObjectID) (*models.TipResponse, error) {
	tip, err := s.Get(ctx, tipID)
	if err != nil {
		return nil, err
	}

	op := "$addToSet"
	for _, id := range tip.Likes {
		if id == userID {
			op = "$pull"
			break
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Tip
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": tipID}, bson.M{op: bson.M{"likes": userID}}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update likes: %w", err)
	}

	authors, err := s.users.GetUsersByIDs(ctx, []primitive.ObjectID{updated.Author})
	if err != nil {
		return nil, err
	}
	populated := models.PopulateTips([]models.Tip{updated}, authors)
	return &populated[0], nil
}

// Delete removes a tip
func (s *TipService) Delete(ctx context.Context, tipID primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": tipID})
	if err != nil {
		return fmt.Errorf("failed to delete tip: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrTipNotFound
	}
	return nil
}
