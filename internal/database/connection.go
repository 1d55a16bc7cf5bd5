package database

import (
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/builder"
	"github.com/parley-chat/parley/internal/models"
)

// Connect открывает postgres и прогоняет миграции схемы
func Connect(databaseURL string) (*Database, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return NewDatabase(db, builder.Dollar)
}

// Migrate создаёт схему для всех моделей
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserStatus{},
		&models.UserPasswordReset{},
		&models.UserEmailVerification{},
		&models.Room{},
		&models.RoomUser{},
		&models.RoomInviteLink{},
		&models.RoomFile{},
		&models.Channel{},
		&models.ChannelMessage{},
		&models.ChannelWebhook{},
	)
}
