package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Состояния пользователя
const (
	StatusOnline       = "online"
	StatusAway         = "away"
	StatusDoNotDisturb = "do_not_disturb"
	StatusOffline      = "offline"
)

type User struct {
	UUID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username      string    `gorm:"uniqueIndex;not null"`
	Email         string    `gorm:"uniqueIndex;not null"`
	PasswordHash  string    `gorm:"not null"`
	AvatarSrc     string
	EmailVerified bool `gorm:"default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Связи
	Status *UserStatus `gorm:"foreignKey:UserUUID"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	return nil
}

type UserStatus struct {
	UUID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserUUID           uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	State              string    `gorm:"default:'offline';check:state IN ('online','away','do_not_disturb','offline')"`
	Message            string
	LastSeenAt         time.Time
	TotalOnlineSeconds int64 `gorm:"default:0"`
	UpdatedAt          time.Time
}

func (s *UserStatus) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	return nil
}
