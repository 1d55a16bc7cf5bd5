package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Роли участников комнаты
const (
	RoleAdmin     = "Admin"
	RoleModerator = "Moderator"
	RoleMember    = "Member"
)

type Room struct {
	UUID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description string
	Category    string
	JoinMessage string
	RulesText   string

	// Квоты
	MaxUsers               int   `gorm:"default:25"`
	MaxChannels            int   `gorm:"default:5"`
	SingleFileBytesAllowed int64 `gorm:"default:5242880"`
	TotalFilesBytesAllowed int64 `gorm:"default:26214400"`
	BytesUsed              int64 `gorm:"default:0"`

	AvatarFileUUID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Связи
	Users      []RoomUser      `gorm:"foreignKey:RoomUUID"`
	Channels   []Channel       `gorm:"foreignKey:RoomUUID"`
	Files      []RoomFile      `gorm:"foreignKey:RoomUUID"`
	InviteLink *RoomInviteLink `gorm:"foreignKey:RoomUUID"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == uuid.Nil {
		r.UUID = uuid.New()
	}
	return nil
}

type RoomUser struct {
	UUID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomUUID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_room_user"`
	UserUUID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_room_user"`
	Role      string    `gorm:"not null;check:role IN ('Admin','Moderator','Member')"`
	CreatedAt time.Time

	User *User `gorm:"foreignKey:UserUUID;references:UUID"`
}

func (ru *RoomUser) BeforeCreate(tx *gorm.DB) error {
	if ru.UUID == uuid.Nil {
		ru.UUID = uuid.New()
	}
	return nil
}

type RoomInviteLink struct {
	UUID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomUUID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Token     string    `gorm:"uniqueIndex;not null"`
	ExpiresAt *time.Time
	CreatedAt time.Time
}

func (l *RoomInviteLink) BeforeCreate(tx *gorm.DB) error {
	if l.UUID == uuid.Nil {
		l.UUID = uuid.New()
	}
	return nil
}
