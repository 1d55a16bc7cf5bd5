package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileSystemStorage хранит блобы в каталоге на диске,
// src URL имеет вид <baseURL>/<key>
type FileSystemStorage struct {
	root    string
	baseURL string
}

func NewFileSystemStorage(root, baseURL string) (*FileSystemStorage, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &FileSystemStorage{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *FileSystemStorage) Upload(ctx context.Context, key string, r io.Reader, size int64) (string, error) {
	destPath := filepath.Join(s.root, key)
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create key directory: %w", err)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if written != size {
		os.Remove(destPath)
		return "", fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	return s.baseURL + "/" + key, nil
}

func (s *FileSystemStorage) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(s.root, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *FileSystemStorage) ParseKey(src string) (string, error) {
	key := strings.TrimPrefix(src, s.baseURL+"/")
	if key == src || key == "" {
		return "", fmt.Errorf("src %q does not belong to this storage", src)
	}
	return key, nil
}
