package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxTipLength is the maximum number of characters in a tip.
const MaxTipLength = 280

// Tip is a short piece of advice posted by a mentor
type Tip struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Content   string               `bson:"content" json:"content"`
	Author    primitive.ObjectID   `bson:"author" json:"author"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	CreatedAt time.Time            `bson:"createdAt" json:"created_at"`
}

// TipResponse is a tip with its author populated.
// Author is nil when the referenced user no longer exists.
type TipResponse struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Author    *PublicProfile `json:"author"`
	Likes     []string       `json:"likes"`
	LikeCount int            `json:"like_count"`
	CreatedAt time.Time      `json:"created_at"`
}

// PopulateTips resolves tip authors from the given users and orders the
// result newest first. Tips whose author is missing are kept.
func PopulateTips(tips []Tip, authors []User) []TipResponse {
	byID := make(map[primitive.ObjectID]*User, len(authors))
	for i := range authors {
		byID[authors[i].ID] = &authors[i]
	}

	responses := make([]TipResponse, 0, len(tips))
	for _, tip := range tips {
		resp := TipResponse{
			ID:        tip.ID.Hex(),
			Content:   tip.Content,
			Likes:     make([]string, 0, len(tip.Likes)),
			LikeCount: len(tip.Likes),
			CreatedAt: tip.CreatedAt,
		}
		for _, like := range tip.Likes {
			resp.Likes = append(resp.Likes, like.Hex())
		}
		if author, ok := byID[tip.Author]; ok {
			resp.Author = author.ToPublicProfile()
		}
		responses = append(responses, resp)
	}

	sort.SliceStable(responses, func(i, j int) bool {
		return responses[i].CreatedAt.After(responses[j].CreatedAt)
	})

	return responses
}

// AuthorIDs returns the distinct author references of the given tips.
func AuthorIDs(tips []Tip) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(tips))
	ids := make([]primitive.ObjectID, 0, len(tips))
	for _, tip := range tips {
		if _, ok := seen[tip.Author]; ok {
			continue
		}
		seen[tip.Author] = struct{}{}
		ids = append(ids, tip.Author)
	}
	return ids
}
