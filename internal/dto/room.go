package dto

import "time"

type Room struct {
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	JoinMessage string `json:"join_message,omitempty"`
	RulesText   string `json:"rules_text,omitempty"`

	MaxUsers    int64 `json:"max_users"`
	MaxChannels int64 `json:"max_channels"`

	SingleFileBytesAllowed int64   `json:"single_file_bytes_allowed"`
	TotalFilesBytesAllowed int64   `json:"total_files_bytes_allowed"`
	BytesUsed              int64   `json:"bytes_used"`
	SingleFileMB           float64 `json:"single_file_mb"`
	TotalFilesMB           float64 `json:"total_files_mb"`
	UsedMB                 float64 `json:"used_mb"`

	AvatarSrc *string   `json:"avatar_src,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRoom собирает DTO комнаты из плоской записи
func NewRoom(row Row, prefix string) (*Room, error) {
	uuid, err := row.Str(prefix + "uuid")
	if err != nil {
		return nil, err
	}
	name, err := row.Str(prefix + "name")
	if err != nil {
		return nil, err
	}
	maxUsers, err := row.Int64(prefix + "max_users")
	if err != nil {
		return nil, err
	}
	maxChannels, err := row.Int64(prefix + "max_channels")
	if err != nil {
		return nil, err
	}
	single, err := row.Int64(prefix + "single_file_bytes_allowed")
	if err != nil {
		return nil, err
	}
	total, err := row.Int64(prefix + "total_files_bytes_allowed")
	if err != nil {
		return nil, err
	}
	used, err := row.Int64(prefix + "bytes_used")
	if err != nil {
		return nil, err
	}
	createdAt, err := row.Time(prefix + "created_at")
	if err != nil {
		return nil, err
	}
	updatedAt, err := row.Time(prefix + "updated_at")
	if err != nil {
		return nil, err
	}

	avatarSrc := row.OptStrPtr(prefix + "avatar_src")
	if avatarSrc == nil && row.Has("room_file_src") {
		avatarSrc = row.OptStrPtr("room_file_src")
	}

	return &Room{
		UUID:                   uuid,
		Name:                   name,
		Description:            row.OptStr(prefix + "description"),
		Category:               row.OptStr(prefix + "category"),
		JoinMessage:            row.OptStr(prefix + "join_message"),
		RulesText:              row.OptStr(prefix + "rules_text"),
		MaxUsers:               maxUsers,
		MaxChannels:            maxChannels,
		SingleFileBytesAllowed: single,
		TotalFilesBytesAllowed: total,
		BytesUsed:              used,
		SingleFileMB:           BytesToMB(single),
		TotalFilesMB:           BytesToMB(total),
		UsedMB:                 BytesToMB(used),
		AvatarSrc:              avatarSrc,
		CreatedAt:              createdAt,
		UpdatedAt:              updatedAt,
	}, nil
}

type RoomUser struct {
	UUID      string    `json:"uuid"`
	RoomUUID  string    `json:"room_uuid"`
	UserUUID  string    `json:"user_uuid"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `json:"user,omitempty"`
}

// NewRoomUser собирает DTO участника; вложенный пользователь подключается,
// если в записи есть поля с префиксом user_
func NewRoomUser(row Row, prefix string) (*RoomUser, error) {
	uuid, err := row.Str(prefix + "uuid")
	if err != nil {
		return nil, err
	}
	roomUUID, err := row.Str(prefix + "room_uuid")
	if err != nil {
		return nil, err
	}
	userUUID, err := row.Str(prefix + "user_uuid")
	if err != nil {
		return nil, err
	}
	role, err := row.Str(prefix + "role")
	if err != nil {
		return nil, err
	}
	createdAt, err := row.Time(prefix + "created_at")
	if err != nil {
		return nil, err
	}

	ru := &RoomUser{
		UUID:      uuid,
		RoomUUID:  roomUUID,
		UserUUID:  userUUID,
		Role:      role,
		CreatedAt: createdAt,
	}

	if row.Has("user_uuid") && prefix != "" {
		user, err := NewUser(row, "user_")
		if err != nil {
			return nil, err
		}
		ru.User = user
	}
	return ru, nil
}

type RoomInviteLink struct {
	UUID      string     `json:"uuid"`
	RoomUUID  string     `json:"room_uuid"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewRoomInviteLink собирает DTO инвайт-ссылки
func NewRoomInviteLink(row Row, prefix string) (*RoomInviteLink, error) {
	uuid, err := row.Str(prefix + "uuid")
	if err != nil {
		return nil, err
	}
	roomUUID, err := row.Str(prefix + "room_uuid")
	if err != nil {
		return nil, err
	}
	token, err := row.Str(prefix + "token")
	if err != nil {
		return nil, err
	}
	createdAt, err := row.Time(prefix + "created_at")
	if err != nil {
		return nil, err
	}
	return &RoomInviteLink{
		UUID:      uuid,
		RoomUUID:  roomUUID,
		Token:     token,
		ExpiresAt: row.OptTimePtr(prefix + "expires_at"),
		CreatedAt: createdAt,
	}, nil
}
