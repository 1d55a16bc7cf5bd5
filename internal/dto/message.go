package dto

import "time"

type ChannelMessage struct {
	UUID        string     `json:"uuid"`
	ChannelUUID string     `json:"channel_uuid"`
	UserUUID    *string    `json:"user_uuid,omitempty"`
	Body        string     `json:"body"`
	Type        string     `json:"type"`
	CreatedAt   time.Time  `json:"created_at"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`

	User    *User           `json:"user,omitempty"`
	Upload  *RoomFile       `json:"upload,omitempty"`
	Webhook *ChannelWebhook `json:"webhook,omitempty"`
}

// NewChannelMessage собирает DTO сообщения. Опциональные вложения:
// user_ (автор), room_file_ (вложенный файл), channel_webhook_ (источник)
func NewChannelMessage(row Row, prefix string) (*ChannelMessage, error) {
	uuid, err := row.Str(prefix + "uuid")
	if err != nil {
		return nil, err
	}
	channelUUID, err := row.Str(prefix + "channel_uuid")
	if err != nil {
		return nil, err
	}
	body, err := row.Str(prefix + "body")
	if err != nil {
		return nil, err
	}
	msgType, err := row.Str(prefix + "type")
	if err != nil {
		return nil, err
	}
	createdAt, err := row.Time(prefix + "created_at")
	if err != nil {
		return nil, err
	}

	m := &ChannelMessage{
		UUID:        uuid,
		ChannelUUID: channelUUID,
		UserUUID:    row.OptStrPtr(prefix + "user_uuid"),
		Body:        body,
		Type:        msgType,
		CreatedAt:   createdAt,
		EditedAt:    row.OptTimePtr(prefix + "edited_at"),
	}

	if row.Has("user_uuid") {
		user, err := NewUser(row, "user_")
		if err != nil {
			return nil, err
		}
		m.User = user
	}
	if row.Has("room_file_uuid") {
		upload, err := NewRoomFile(row, "room_file_")
		if err != nil {
			return nil, err
		}
		m.Upload = upload
	}
	if row.Has("channel_webhook_uuid") {
		webhook, err := NewChannelWebhook(row, "channel_webhook_")
		if err != nil {
			return nil, err
		}
		m.Webhook = webhook
	}
	return m, nil
}
