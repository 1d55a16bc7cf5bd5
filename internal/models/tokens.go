package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserPasswordReset одноразовый токен сброса пароля
type UserPasswordReset struct {
	UUID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserUUID  uuid.UUID `gorm:"column:user_uuid;type:uuid;not null;index"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

func (r *UserPasswordReset) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == uuid.Nil {
		r.UUID = uuid.New()
	}
	return nil
}

// UserEmailVerification одноразовый токен подтверждения почты
type UserEmailVerification struct {
	UUID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserUUID  uuid.UUID `gorm:"column:user_uuid;type:uuid;not null;index"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

func (v *UserEmailVerification) BeforeCreate(tx *gorm.DB) error {
	if v.UUID == uuid.Nil {
		v.UUID = uuid.New()
	}
	return nil
}
