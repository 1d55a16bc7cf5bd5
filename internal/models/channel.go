package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Типы каналов
const (
	ChannelTypeText = "text"
	ChannelTypeCall = "call"
)

type Channel struct {
	UUID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomUUID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"not null"`
	Description string
	Type        string `gorm:"not null;check:type IN ('text','call')"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Связи
	Webhook *ChannelWebhook `gorm:"foreignKey:ChannelUUID"`
}

func (c *Channel) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	return nil
}
