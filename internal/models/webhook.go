package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChannelWebhook интеграция, не более одной на канал
type ChannelWebhook struct {
	UUID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ChannelUUID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"`
	Name           string     `gorm:"not null"`
	AvatarFileUUID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	AvatarFile *RoomFile `gorm:"foreignKey:AvatarFileUUID;references:UUID"`
}

func (w *ChannelWebhook) BeforeCreate(tx *gorm.DB) error {
	if w.UUID == uuid.Nil {
		w.UUID = uuid.New()
	}
	return nil
}
