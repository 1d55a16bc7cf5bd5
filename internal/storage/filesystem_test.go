package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystemStorageUpload(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileSystemStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	src, err := s.Upload(ctx, "rooms/abc/avatar.png", strings.NewReader("payload"), 7)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/rooms/abc/avatar.png", src)

	key, err := s.ParseKey(src)
	require.NoError(t, err)
	assert.Equal(t, "rooms/abc/avatar.png", key)
}

func TestFileSystemStorageUploadSizeMismatch(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFileSystemStorage(root, "http://localhost:8080/uploads")
	require.NoError(t, err)

	_, err = s.Upload(ctx, "bad", strings.NewReader("payload"), 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size mismatch")

	// Частично записанный файл не должен остаться
	_, statErr := os.Stat(filepath.Join(root, "bad"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileSystemStorageDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileSystemStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	_, err = s.Upload(ctx, "victim", strings.NewReader("x"), 1)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "victim"))
	require.NoError(t, s.Delete(ctx, "victim"))
	require.NoError(t, s.Delete(ctx, "never-existed"))
}

func TestFileSystemStorageParseKeyForeignSrc(t *testing.T) {
	s, err := NewFileSystemStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	_, err = s.ParseKey("http://elsewhere.example/file")
	require.Error(t, err)
}

func TestMemoryStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	src, err := s.Upload(ctx, "k", strings.NewReader("data"), 4)
	require.NoError(t, err)
	assert.True(t, s.Has("k"))

	key, err := s.ParseKey(src)
	require.NoError(t, err)
	assert.Equal(t, "k", key)

	require.NoError(t, s.Delete(ctx, "k"))
	assert.False(t, s.Has("k"))
	require.NoError(t, s.Delete(ctx, "k"))
}
