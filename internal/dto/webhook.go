package dto

import "time"

type ChannelWebhook struct {
	UUID        string    `json:"uuid"`
	ChannelUUID string    `json:"channel_uuid"`
	Name        string    `json:"name"`
	Avatar      *RoomFile `json:"avatar,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewChannelWebhook собирает DTO webhook-а; аватар подключается,
// если в записи есть поля с префиксом room_file_
func NewChannelWebhook(row Row, prefix string) (*ChannelWebhook, error) {
	uuid, err := row.Str(prefix + "uuid")
	if err != nil {
		return nil, err
	}
	channelUUID, err := row.Str(prefix + "channel_uuid")
	if err != nil {
		return nil, err
	}
	name, err := row.Str(prefix + "name")
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

	w := &ChannelWebhook{
		UUID:        uuid,
		ChannelUUID: channelUUID,
		Name:        name,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}

	if row.Has("room_file_uuid") {
		avatar, err := NewRoomFile(row, "room_file_")
		if err != nil {
			return nil, err
		}
		w.Avatar = avatar
	}
	return w, nil
}
