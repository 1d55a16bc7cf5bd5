package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Store документное хранилище поверх redis: документы лежат JSON-ом
// в хэше своей коллекции, вторичные связи ведутся множествами
type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Put кладёт документ в коллекцию
func (s *Store) Put(ctx context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("docstore: marshal %s/%s: %w", collection, id, err)
	}
	return s.rdb.HSet(ctx, collection, id, data).Err()
}

// Get читает документ; второй результат false, если его нет
func (s *Store) Get(ctx context.Context, collection, id string, out any) (bool, error) {
	data, err := s.rdb.HGet(ctx, collection, id).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("docstore: unmarshal %s/%s: %w", collection, id, err)
	}
	return true, nil
}

// Delete удаляет документ, отсутствие не ошибка
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	return s.rdb.HDel(ctx, collection, id).Err()
}

// AddMember добавляет member во вторичный индекс
func (s *Store) AddMember(ctx context.Context, index, member string) error {
	return s.rdb.SAdd(ctx, index, member).Err()
}

// RemoveMember убирает member из индекса
func (s *Store) RemoveMember(ctx context.Context, index, member string) error {
	return s.rdb.SRem(ctx, index, member).Err()
}

// CountMembers возвращает размер индекса
func (s *Store) CountMembers(ctx context.Context, index string) (int64, error) {
	return s.rdb.SCard(ctx, index).Result()
}

// Members возвращает все элементы индекса
func (s *Store) Members(ctx context.Context, index string) ([]string, error) {
	return s.rdb.SMembers(ctx, index).Result()
}
