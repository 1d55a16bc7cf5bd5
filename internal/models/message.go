package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Типы сообщений
const (
	MessageTypeUser    = "user"
	MessageTypeSystem  = "system"
	MessageTypeWebhook = "webhook"
)

type ChannelMessage struct {
	UUID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ChannelUUID uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserUUID    *uuid.UUID `gorm:"type:uuid"`
	Body        string     `gorm:"not null"`
	Type        string     `gorm:"not null;check:type IN ('user','system','webhook')"`

	// Вложение и webhook-источник, оба опциональны
	UploadFileUUID *uuid.UUID `gorm:"type:uuid"`
	WebhookUUID    *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	EditedAt  *time.Time

	User       *User           `gorm:"foreignKey:UserUUID;references:UUID"`
	UploadFile *RoomFile       `gorm:"foreignKey:UploadFileUUID;references:UUID"`
	Webhook    *ChannelWebhook `gorm:"foreignKey:WebhookUUID;references:UUID"`
}

func (m *ChannelMessage) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == uuid.Nil {
		m.UUID = uuid.New()
	}
	return nil
}
