package main

import (
	"testing"
	"time"

	"creatorsmeet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestLegacyUserUpdate_MovesPasswordAndNormalizes(t *testing.T) {
	now := time.Now()
	doc := bson.M{
		"email":    " Ada@Example.COM ",
		"password": "$2a$10$legacyhash",
		"role":     "Mentor",
	}

	update := legacyUserUpdate(doc, now)
	require.NotNil(t, update)

	set := update["$set"].(bson.M)
	assert.Equal(t, "$2a$10$legacyhash", set["passwordHash"])
	assert.Equal(t, "ada@example.com", set["email"])
	assert.Equal(t, models.RoleMentor, set["role"])
	assert.Equal(t, now, set["createdAt"])
	assert.Contains(t, update["$unset"].(bson.M), "password")
}

func TestLegacyUserUpdate_UnknownRoleDefaultsToCreator(t *testing.T) {
	doc := bson.M{
		"email":     "a@b.com",
		"createdAt": time.Now(),
		"updatedAt": time.Now(),
	}

	update := legacyUserUpdate(doc, time.Now())
	require.NotNil(t, update)
	assert.Equal(t, models.RoleCreator, update["$set"].(bson.M)["role"])
	assert.NotContains(t, update, "$unset")
}

func TestLegacyUserUpdate_KeepsExistingHash(t *testing.T) {
	doc := bson.M{
		"email":        "a@b.com",
		"password":     "old",
		"passwordHash": "argon2id$new",
		"role":         "developer",
		"createdAt":    time.Now(),
		"updatedAt":    time.Now(),
	}

	update := legacyUserUpdate(doc, time.Now())
	require.NotNil(t, update)
	assert.NotContains(t, update, "$set")
	assert.Contains(t, update["$unset"].(bson.M), "password")
}

func TestLegacyUserUpdate_CurrentDocumentUnchanged(t *testing.T) {
	doc := bson.M{
		"email":        "a@b.com",
		"passwordHash": "argon2id$x",
		"role":         "creator",
		"createdAt":    time.Now(),
		"updatedAt":    time.Now(),
	}
	assert.Nil(t, legacyUserUpdate(doc, time.Now()))
}
