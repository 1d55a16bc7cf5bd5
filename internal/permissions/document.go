package permissions

import (
	"context"

	"github.com/google/uuid"

	"github.com/parley-chat/parley/internal/apperrors"
	"github.com/parley-chat/parley/internal/docstore"
)

// Коллекции и индексы документного бэкенда
const (
	ColRooms     = "rooms"
	ColRoomUsers = "room_users"
	ColChannels  = "channels"

	IdxRoomMembers  = "idx:room_members:"  // + room uuid
	IdxRoomChannels = "idx:room_channels:" // + room uuid
)

// RoomUserKey ключ документа участника внутри коллекции room_users
func RoomUserKey(roomUUID, userUUID uuid.UUID) string {
	return roomUUID.String() + ":" + userUUID.String()
}

// RoomDoc документ комнаты, только поля нужные проверкам
type RoomDoc struct {
	UUID                   string `json:"uuid"`
	MaxUsers               int64  `json:"max_users"`
	MaxChannels            int64  `json:"max_channels"`
	SingleFileBytesAllowed int64  `json:"single_file_bytes_allowed"`
	TotalFilesBytesAllowed int64  `json:"total_files_bytes_allowed"`
	BytesUsed              int64  `json:"bytes_used"`
}

type RoomUserDoc struct {
	RoomUUID string `json:"room_uuid"`
	UserUUID string `json:"user_uuid"`
	Role     string `json:"role"`
}

type ChannelDoc struct {
	UUID     string `json:"uuid"`
	RoomUUID string `json:"room_uuid"`
}

// Document реализация проверок на документном бэкенде
type Document struct {
	store *docstore.Store
}

func NewDocument(store *docstore.Store) *Document {
	return &Document{store: store}
}

func (p *Document) room(ctx context.Context, roomUUID uuid.UUID) (*RoomDoc, error) {
	var doc RoomDoc
	found, err := p.store.Get(ctx, ColRooms, roomUUID.String(), &doc)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFound("room")
	}
	return &doc, nil
}

func (p *Document) IsInRoom(ctx context.Context, roomUUID, userUUID uuid.UUID, minRole string) (bool, error) {
	if _, err := p.room(ctx, roomUUID); err != nil {
		return false, err
	}

	var member RoomUserDoc
	found, err := p.store.Get(ctx, ColRoomUsers, RoomUserKey(roomUUID, userUUID), &member)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if minRole == "" {
		return true, nil
	}
	return RoleAtLeast(member.Role, minRole), nil
}

func (p *Document) IsInRoomByChannel(ctx context.Context, channelUUID, userUUID uuid.UUID, minRole string) (bool, error) {
	var channel ChannelDoc
	found, err := p.store.Get(ctx, ColChannels, channelUUID.String(), &channel)
	if err != nil {
		return false, err
	}
	if !found {
		return false, apperrors.NewNotFound("channel")
	}

	roomUUID, err := uuid.Parse(channel.RoomUUID)
	if err != nil {
		return false, err
	}
	return p.IsInRoom(ctx, roomUUID, userUUID, minRole)
}

func (p *Document) FileExceedsSingleFileSize(ctx context.Context, roomUUID uuid.UUID, bytes int64) (bool, error) {
	room, err := p.room(ctx, roomUUID)
	if err != nil {
		return false, err
	}
	return bytes > room.SingleFileBytesAllowed, nil
}

func (p *Document) FileExceedsTotalFilesLimit(ctx context.Context, roomUUID uuid.UUID, bytes int64) (bool, error) {
	room, err := p.room(ctx, roomUUID)
	if err != nil {
		return false, err
	}
	return room.BytesUsed+bytes > room.TotalFilesBytesAllowed, nil
}

func (p *Document) UserCountExceedsLimit(ctx context.Context, roomUUID uuid.UUID, add int) (bool, error) {
	room, err := p.room(ctx, roomUUID)
	if err != nil {
		return false, err
	}
	count, err := p.store.CountMembers(ctx, IdxRoomMembers+roomUUID.String())
	if err != nil {
		return false, err
	}
	return count+int64(add) > room.MaxUsers, nil
}

func (p *Document) ChannelCountExceedsLimit(ctx context.Context, roomUUID uuid.UUID, add int) (bool, error) {
	room, err := p.room(ctx, roomUUID)
	if err != nil {
		return false, err
	}
	count, err := p.store.CountMembers(ctx, IdxRoomChannels+roomUUID.String())
	if err != nil {
		return false, err
	}
	return count+int64(add) > room.MaxChannels, nil
}
