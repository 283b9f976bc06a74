package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLister struct {
	paths []string
	err   error
}

func (s staticLister) ListProfileImages(context.Context) ([]string, error) {
	return s.paths, s.err
}

func writeImage(t *testing.T, dir, name string, age time.Duration) {
	t.Helper()
	full := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(full, []byte("img"), 0o644))
	modTime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(full, modTime, modTime))
}

func TestImageCleanupJob_RemovesOnlyOldOrphans(t *testing.T) {
	publicDir := t.TempDir()
	dir := filepath.Join(publicDir, "images", "profiles")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	writeImage(t, dir, "kept.png", 48*time.Hour)
	writeImage(t, dir, "orphan.png", 48*time.Hour)
	writeImage(t, dir, "fresh.png", time.Minute)

	job := NewImageCleanupJob(staticLister{paths: []string{"/images/profiles/kept.png"}}, publicDir, "images/profiles")
	require.NoError(t, job.Run(context.Background()))

	assert.FileExists(t, filepath.Join(dir, "kept.png"))
	assert.FileExists(t, filepath.Join(dir, "fresh.png"))
	assert.NoFileExists(t, filepath.Join(dir, "orphan.png"))
}

func TestImageCleanupJob_MissingDirectory(t *testing.T) {
	job := NewImageCleanupJob(staticLister{err: errors.New("must not be called")}, t.TempDir(), "images/profiles")
	assert.NoError(t, job.Run(context.Background()))
}

func TestImageCleanupJob_ListerErrorKeepsFiles(t *testing.T) {
	publicDir := t.TempDir()
	dir := filepath.Join(publicDir, "images", "profiles")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeImage(t, dir, "orphan.png", 48*time.Hour)

	job := NewImageCleanupJob(staticLister{err: errors.New("db down")}, publicDir, "images/profiles")
	assert.Error(t, job.Run(context.Background()))
	assert.FileExists(t, filepath.Join(dir, "orphan.png"))
}

type countingJob struct{ runs atomic.Int32 }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return nil
}

func TestJobScheduler_RegisterAndRunNow(t *testing.T) {
	s, err := NewJobScheduler()
	require.NoError(t, err)

	job := &countingJob{}
	require.NoError(t, s.Register("count", DefaultImageCleanupSchedule, job))
	assert.Error(t, s.Register("count", DefaultImageCleanupSchedule, job), "duplicate names are rejected")
	assert.Error(t, s.Register("bad", "every day at noon", job))

	s.Start()
	defer s.Stop()

	require.NoError(t, s.RunNow("count"))
	assert.Equal(t, int32(1), job.runs.Load())
	assert.Error(t, s.RunNow("missing"))

	status := s.GetStatus()
	require.Contains(t, status, "count")
	assert.Equal(t, DefaultImageCleanupSchedule, status["count"].Schedule)
	assert.True(t, status["count"].NextRunTime.After(time.Now()))
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.Error(t, ValidateSchedule("* * *"))
	assert.Error(t, ValidateSchedule("0 0 0 * * *"), "seconds field is not accepted")
}
