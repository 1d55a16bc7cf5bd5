package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Типы файлов комнаты
const (
	FileTypeRoomAvatar    = "room_avatar"
	FileTypeWebhookAvatar = "webhook_avatar"
	FileTypeMessageUpload = "message_upload"
)

// RoomFile метаданные блоба; size учитывается в квоте комнаты
type RoomFile struct {
	UUID      uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RoomUUID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	OwnerUUID *uuid.UUID `gorm:"type:uuid"`
	Src       string     `gorm:"not null"`
	Size      int64      `gorm:"not null"`
	Type      string     `gorm:"not null;check:type IN ('room_avatar','webhook_avatar','message_upload')"`
	CreatedAt time.Time
}

func (f *RoomFile) BeforeCreate(tx *gorm.DB) error {
	if f.UUID == uuid.Nil {
		f.UUID = uuid.New()
	}
	return nil
}
