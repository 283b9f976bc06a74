package jobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"time"
)

// DefaultImageCleanupSchedule runs the orphan sweep nightly
const DefaultImageCleanupSchedule = "0 3 * * *"

// imageGracePeriod protects uploads whose user record is still being written
const imageGracePeriod = time.Hour

// ProfileImageLister returns every profile image URL still referenced by a user
type ProfileImageLister interface {
	ListProfileImages(ctx context.Context) ([]string, error)
}

// ImageCleanupJob deletes profile images no user references anymore
type ImageCleanupJob struct {
	users  ProfileImageLister
	dir    string // directory holding the image files
	urlDir string // URL prefix of the same directory, e.g. /images/profiles
	now    func() time.Time
}

// NewImageCleanupJob creates a cleanup job for files under publicDir/imageDir
func NewImageCleanupJob(users ProfileImageLister, publicDir, imageDir string) *ImageCleanupJob {
	return &ImageCleanupJob{
		users:  users,
		dir:    filepath.Join(publicDir, filepath.FromSlash(imageDir)),
		urlDir: path.Join("/", imageDir),
		now:    time.Now,
	}
}

// Run removes unreferenced images older than the grace period
func (j *ImageCleanupJob) Run(ctx context.Context) error {
	entries, err := os.ReadDir(j.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read image directory: %w", err)
	}

	referenced, err := j.users.ListProfileImages(ctx)
	if err != nil {
		return err
	}
	inUse := make(map[string]struct{}, len(referenced))
	for _, url := range referenced {
		inUse[url] = struct{}{}
	}

	cutoff := j.now().Add(-imageGracePeriod)
	removed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			continue
		}
		if _, ok := inUse[path.Join(j.urlDir, entry.Name())]; ok {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(j.dir, entry.Name())); err != nil {
			log.Printf("⚠️  [CLEANUP] Failed to remove %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("🧹 [CLEANUP] Removed %d orphaned profile images", removed)
	}
	return nil
}
