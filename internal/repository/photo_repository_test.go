package repository

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-review-service/internal/apperror"
)

func TestDiskPhotoRepository_SaveAndOpen(t *testing.T) {
	repo, err := NewDiskPhotoRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "beach.jpg", strings.NewReader("jpeg-bytes")))

	photo, err := repo.Open(ctx, "beach.jpg")
	require.NoError(t, err)
	defer photo.Close()

	data, err := io.ReadAll(photo)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.Equal(t, int64(len("jpeg-bytes")), photo.Size)
}

func TestDiskPhotoRepository_RefusesOverwrite(t *testing.T) {
	repo, err := NewDiskPhotoRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "a.png", strings.NewReader("one")))
	assert.Error(t, repo.Save(ctx, "a.png", strings.NewReader("two")))
}

func TestDiskPhotoRepository_OpenRejectsTraversal(t *testing.T) {
	repo, err := NewDiskPhotoRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"", ".", "..", "../etc/passwd", "sub/a.jpg", "missing.jpg"} {
		_, err := repo.Open(ctx, name)
		assert.True(t, errors.Is(err, apperror.ErrNotFound), "name %q", name)
	}
	err = repo.Save(ctx, "../escape.jpg", strings.NewReader("x"))
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}
