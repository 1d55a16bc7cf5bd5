package storage

import (
	"context"
	"io"
)

// Storage хранилище блобов. Delete обязан быть идемпотентным:
// удаление отсутствующего ключа не ошибка, иначе компенсирующие
// удаления при откате транзакций становятся небезопасными
type Storage interface {
	// Upload сохраняет блоб и возвращает его src URL
	Upload(ctx context.Context, key string, r io.Reader, size int64) (string, error)

	// Delete удаляет блоб по ключу
	Delete(ctx context.Context, key string) error

	// ParseKey извлекает ключ из сохранённого src URL
	ParseKey(src string) (string, error)
}
