package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// MemoryStorage хранит блобы в памяти, используется в тестах
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

const memoryBaseURL = "memory://storage"

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

func (s *MemoryStorage) Upload(ctx context.Context, key string, r io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	if int64(len(data)) != size {
		return "", fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data

	return memoryBaseURL + "/" + key, nil
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *MemoryStorage) ParseKey(src string) (string, error) {
	key := strings.TrimPrefix(src, memoryBaseURL+"/")
	if key == src || key == "" {
		return "", fmt.Errorf("src %q does not belong to this storage", src)
	}
	return key, nil
}

// Has сообщает, лежит ли блоб в хранилище
func (s *MemoryStorage) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[key]
	return ok
}

// Len возвращает количество блобов
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
