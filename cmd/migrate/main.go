package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"creatorsmeet/internal/database"
	"creatorsmeet/internal/models"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
)

// MigrationStats tracks migration progress
type MigrationStats struct {
	Scanned    int
	Normalized int
	Unchanged  int
	Errors     int
}

func main() {
	dryRun := flag.Bool("dry-run", false, "Run in dry-run mode (no changes made)")
	envFile := flag.String("env", ".env", "Path to the .env file")
	flag.Parse()

	fmt.Println("==============================================")
	fmt.Println("🔄 Legacy User Migration")
	fmt.Println("==============================================")
	if *dryRun {
		fmt.Println("🔍 DRY RUN MODE - No changes will be made")
	}
	fmt.Println("This script will, for every user document:")
	fmt.Println("  - move a legacy 'password' hash to 'passwordHash'")
	fmt.Println("  - lowercase and trim the email")
	fmt.Println("  - default a missing or unknown role to 'creator'")
	fmt.Println("  - fill missing createdAt/updatedAt")
	fmt.Println()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("⚠️  No .env file found: %v (using environment variables)", err)
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("❌ MONGODB_URI environment variable is required")
	}
	fmt.Printf("📋 MongoDB URI: %s\n", maskURI(mongoURI))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.NewMongoDB(ctx, mongoURI)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer db.Close(context.Background())
	fmt.Println("✅ Connected to MongoDB")

	users := db.Collection(database.CollectionUsers)
	cursor, err := users.Find(ctx, bson.M{})
	if err != nil {
		log.Fatalf("❌ Failed to list users: %v", err)
	}
	defer cursor.Close(ctx)

	var stats MigrationStats
	now := time.Now()

	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			fmt.Printf("  ❌ Failed to decode user: %v\n", err)
			stats.Errors++
			continue
		}
		stats.Scanned++

		update := legacyUserUpdate(doc, now)
		if update == nil {
			stats.Unchanged++
			continue
		}

		email, _ := doc["email"].(string)
		if *dryRun {
			fmt.Printf("  [DRY RUN] Would UPDATE %s: %v\n", email, describe(update))
			stats.Normalized++
			continue
		}
		if _, err := users.UpdateOne(ctx, bson.M{"_id": doc["_id"]}, update); err != nil {
			fmt.Printf("  ❌ Failed to update %s: %v\n", email, err)
			stats.Errors++
			continue
		}
		fmt.Printf("  ✅ UPDATED: %s\n", email)
		stats.Normalized++
	}
	if err := cursor.Err(); err != nil {
		log.Printf("⚠️  Cursor stopped early: %v", err)
	}

	fmt.Println()
	fmt.Println("==============================================")
	if *dryRun {
		fmt.Println("📊 DRY RUN Summary (no changes made)")
	} else {
		fmt.Println("📊 Migration Summary")
	}
	fmt.Println("==============================================")
	fmt.Printf("  Users scanned:    %d\n", stats.Scanned)
	fmt.Printf("  Normalized:       %d\n", stats.Normalized)
	fmt.Printf("  Already current:  %d\n", stats.Unchanged)
	fmt.Printf("  Errors:           %d\n", stats.Errors)

	if *dryRun {
		fmt.Println()
		fmt.Println("💡 To apply changes, run without --dry-run")
	}
}

// legacyUserUpdate returns the update bringing doc to the current schema,
// or nil when nothing needs to change.
func legacyUserUpdate(doc bson.M, now time.Time) bson.M {
	set := bson.M{}
	unset := bson.M{}

	if legacy, ok := doc["password"].(string); ok {
		if current, _ := doc["passwordHash"].(string); current == "" && legacy != "" {
			set["passwordHash"] = legacy
		}
		unset["password"] = ""
	}

	if email, ok := doc["email"].(string); ok {
		if normalized := strings.ToLower(strings.TrimSpace(email)); normalized != email {
			set["email"] = normalized
		}
	}

	role, _ := doc["role"].(string)
	if !models.Role(role).Valid() {
		if normalized := models.Role(strings.ToLower(strings.TrimSpace(role))); normalized.Valid() {
			set["role"] = normalized
		} else {
			set["role"] = models.RoleCreator
		}
	}

	if _, ok := doc["createdAt"]; !ok {
		set["createdAt"] = now
	}
	if _, ok := doc["updatedAt"]; !ok {
		set["updatedAt"] = now
	}

	if len(set) == 0 && len(unset) == 0 {
		return nil
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func describe(update bson.M) string {
	var parts []string
	if set, ok := update["$set"].(bson.M); ok {
		for k := range set {
			parts = append(parts, "set "+k)
		}
	}
	if unset, ok := update["$unset"].(bson.M); ok {
		for k := range unset {
			parts = append(parts, "unset "+k)
		}
	}
	return strings.Join(parts, ", ")
}

// maskURI masks sensitive parts of a connection URI for logging
func maskURI(uri string) string {
	if len(uri) > 20 {
		return uri[:15] + "..." + uri[len(uri)-10:]
	}
	return "***"
}
