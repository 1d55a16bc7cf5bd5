package jobs

import (
	"context"
	"log"
	"time"

	"github.com/parley-chat/parley/internal/database"
	"github.com/parley-chat/parley/internal/models"
)

// Retention фоновая чистка просроченных одноразовых токенов
type Retention struct {
	db       *database.Database
	interval time.Duration
}

func NewRetention(db *database.Database, interval time.Duration) *Retention {
	return &Retention{db: db, interval: interval}
}

// Run крутит чистку до отмены контекста; ошибки логируются,
// следующий проход идёт по расписанию
func (r *Retention) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil {
				log.Printf("retention sweep failed: %v", err)
			}
		}
	}
}

// Sweep удаляет токены с истёкшим expires_at
func (r *Retention) Sweep(ctx context.Context) error {
	now := time.Now()
	db := r.db.Gorm().WithContext(ctx)

	res := db.Delete(&models.UserPasswordReset{}, "expires_at < ?", now)
	if res.Error != nil {
		return res.Error
	}
	removed := res.RowsAffected

	res = db.Delete(&models.UserEmailVerification{}, "expires_at < ?", now)
	if res.Error != nil {
		return res.Error
	}
	removed += res.RowsAffected

	if removed > 0 {
		log.Printf("retention sweep removed %d expired tokens", removed)
	}
	return nil
}
