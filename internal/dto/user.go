package dto

import "time"

type User struct {
	UUID          string      `json:"uuid"`
	Username      string      `json:"username"`
	Email         string      `json:"email,omitempty"`
	AvatarSrc     *string     `json:"avatar_src,omitempty"`
	EmailVerified bool        `json:"email_verified,omitempty"`
	CreatedAt     *time.Time  `json:"created_at,omitempty"`
	Status        *UserStatus `json:"status,omitempty"`
}

// NewUser собирает DTO пользователя. Email и флаг подтверждения
// присутствуют только в выборках собственного профиля
func NewUser(row Row, prefix string) (*User, error) {
	uuid, err := row.Str(prefix + "uuid")
	if err != nil {
		return nil, err
	}
	username, err := row.Str(prefix + "username")
	if err != nil {
		return nil, err
	}

	u := &User{
		UUID:      uuid,
		Username:  username,
		Email:     row.OptStr(prefix + "email"),
		AvatarSrc: row.OptStrPtr(prefix + "avatar_src"),
		CreatedAt: row.OptTimePtr(prefix + "created_at"),
	}
	u.EmailVerified = row.OptBool(prefix + "email_verified")

	if row.Has("user_status_uuid") {
		status, err := NewUserStatus(row, "user_status_")
		if err != nil {
			return nil, err
		}
		u.Status = status
	}
	return u, nil
}

type UserStatus struct {
	UUID             string    `json:"uuid"`
	UserUUID         string    `json:"user_uuid"`
	State            string    `json:"state"`
	Message          string    `json:"message,omitempty"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	TotalOnlineHours float64   `json:"total_online_hours"`
}

// NewUserStatus собирает DTO статуса; секунды онлайна отдаются часами
func NewUserStatus(row Row, prefix string) (*UserStatus, error) {
	uuid, err := row.Str(prefix + "uuid")
	if err != nil {
		return nil, err
	}
	userUUID, err := row.Str(prefix + "user_uuid")
	if err != nil {
		return nil, err
	}
	state, err := row.Str(prefix + "state")
	if err != nil {
		return nil, err
	}
	lastSeen, err := row.Time(prefix + "last_seen_at")
	if err != nil {
		return nil, err
	}
	seconds, err := row.Int64(prefix + "total_online_seconds")
	if err != nil {
		return nil, err
	}
	return &UserStatus{
		UUID:             uuid,
		UserUUID:         userUUID,
		State:            state,
		Message:          row.OptStr(prefix + "message"),
		LastSeenAt:       lastSeen,
		TotalOnlineHours: float64(seconds) / 3600,
	}, nil
}
