package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/google/uuid"

	"github.com/parley-chat/parley/internal/storage"
	"github.com/parley-chat/parley/internal/validators"
)

// Page результат постраничной выборки. page/limit/pages присутствуют
// только когда пагинация была запрошена
type Page[T any] struct {
	Total int64 `json:"total"`
	Data  []T   `json:"data"`
	Page  *int  `json:"page,omitempty"`
	Limit *int  `json:"limit,omitempty"`
	Pages *int  `json:"pages,omitempty"`
}

func newPage[T any](total int64, data []T, pg validators.Pagination) *Page[T] {
	if data == nil {
		data = []T{}
	}
	p := &Page[T]{Total: total, Data: data}
	if !pg.Requested() {
		return p
	}

	p.Limit = pg.Limit
	pages := int(math.Ceil(float64(total) / float64(*pg.Limit)))
	p.Pages = &pages
	if pg.Page != nil {
		p.Page = pg.Page
	} else {
		first := 1
		p.Page = &first
	}
	return p
}

// Upload входной файл сервисной операции
type Upload struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// Notifier рассылка событий канала подключённым клиентам
type Notifier interface {
	NotifyChannel(channelUUID uuid.UUID, event string, payload any)
}

// События канала
const (
	EventMessageCreated = "message_created"
	EventMessageUpdated = "message_updated"
	EventMessageDeleted = "message_deleted"
)

// blobKey ключ блоба в хранилище
func blobKey(roomUUID, fileUUID uuid.UUID, name string) string {
	return fmt.Sprintf("rooms/%s/%s_%s", roomUUID, fileUUID, name)
}

// cleanupBlob компенсирующее удаление блоба; ошибки логируются
// и не перекрывают исходную
func cleanupBlob(ctx context.Context, store storage.Storage, key string) {
	if err := store.Delete(ctx, key); err != nil {
		log.Printf("compensating blob delete failed for %s: %v", key, err)
	}
}

// cleanupSrc как cleanupBlob, но по src URL
func cleanupSrc(ctx context.Context, store storage.Storage, src string) {
	key, err := store.ParseKey(src)
	if err != nil {
		log.Printf("cannot parse blob key from %s: %v", src, err)
		return
	}
	cleanupBlob(ctx, store, key)
}
