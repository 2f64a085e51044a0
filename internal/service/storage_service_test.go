package service

import (
	"context"
	"coursegen_backend/internal/config"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalArchiveCourseContent(t *testing.T) {
	dir := t.TempDir()
	svc := NewStorageService(&config.StorageConfig{Type: "local", LocalPath: dir})

	url, err := svc.ArchiveCourseContent(context.Background(), "course-1", "# Lesson\nbody")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/courses/course-1/content.md", url)

	data, err := os.ReadFile(filepath.Join(dir, "courses", "course-1", "content.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Lesson\nbody", string(data))

	require.NoError(t, svc.Delete(context.Background(), CourseArchiveKey("course-1")))
	_, err = os.Stat(filepath.Join(dir, "courses", "course-1", "content.md"))
	assert.True(t, os.IsNotExist(err))
}
