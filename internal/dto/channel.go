package dto

import "time"

type Channel struct {
	UUID        string          `json:"uuid"`
	RoomUUID    string          `json:"room_uuid"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Webhook     *ChannelWebhook `json:"webhook,omitempty"`
}

// NewChannel собирает DTO канала; вложенный webhook подключается,
// если в записи есть поля с префиксом channel_webhook_
func NewChannel(row Row, prefix string) (*Channel, error) {
	uuid, err := row.Str(prefix + "uuid")
	if err != nil {
		return nil, err
	}
	roomUUID, err := row.Str(prefix + "room_uuid")
	if err != nil {
		return nil, err
	}
	name, err := row.Str(prefix + "name")
	if err != nil {
		return nil, err
	}
	channelType, err := row.Str(prefix + "type")
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

	ch := &Channel{
		UUID:        uuid,
		RoomUUID:    roomUUID,
		Name:        name,
		Description: row.OptStr(prefix + "description"),
		Type:        channelType,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}

	if row.Has("channel_webhook_uuid") {
		webhook, err := NewChannelWebhook(row, "channel_webhook_")
		if err != nil {
			return nil, err
		}
		ch.Webhook = webhook
	}
	return ch, nil
}
