package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is what a member does on the platform.
type Role string

const (
	RoleCreator   Role = "creator"
	RoleDeveloper Role = "developer"
	RoleMentor    Role = "mentor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCreator, RoleDeveloper, RoleMentor:
		return true
	}
	return false
}

// User represents a platform member
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash,omitempty" json:"-"` // never exposed in API
	Name         string             `bson:"name" json:"name"`
	Role         Role               `bson:"role" json:"role"`
	ProfileImage string             `bson:"profileImage,omitempty" json:"profile_image,omitempty"`
	Bio          string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Skills       []string           `bson:"skills,omitempty" json:"skills,omitempty"`

	// Set by the requirement analysis flow
	ProjectRequirements *ProjectRequirements `bson:"projectRequirements,omitempty" json:"project_requirements,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// ProjectRequirements is the last analyzed project description of a creator.
type ProjectRequirements struct {
	Description  string    `bson:"description" json:"description"`
	Technologies []string  `bson:"technologies" json:"technologies"`
	Complexity   string    `bson:"complexity" json:"complexity"`
	Expertise    string    `bson:"expertise" json:"expertise"`
	AnalyzedAt   time.Time `bson:"analyzedAt" json:"analyzed_at"`
}

// UserResponse is the API response for user data
type UserResponse struct {
	ID                  string               `json:"id"`
	Email               string               `json:"email"`
	Name                string               `json:"name"`
	Role                Role                 `json:"role"`
	ProfileImage        string               `json:"profile_image,omitempty"`
	Bio                 string               `json:"bio,omitempty"`
	Skills              []string             `json:"skills,omitempty"`
	ProjectRequirements *ProjectRequirements `json:"project_requirements,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
}

// ToResponse converts User to UserResponse, dropping the password hash
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:                  u.ID.Hex(),
		Email:               u.Email,
		Name:                u.Name,
		Role:                u.Role,
		ProfileImage:        u.ProfileImage,
		Bio:                 u.Bio,
		Skills:              u.Skills,
		ProjectRequirements: u.ProjectRequirements,
		CreatedAt:           u.CreatedAt,
	}
}

// PublicProfile is the subset of a user shown when a reference is populated.
type PublicProfile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// ToPublicProfile converts User to PublicProfile
func (u *User) ToPublicProfile() *PublicProfile {
	return &PublicProfile{
		ID:           u.ID.Hex(),
		Name:         u.Name,
		Role:         u.Role,
		ProfileImage: u.ProfileImage,
	}
}
