package permissions

import (
	"context"

	"github.com/google/uuid"

	"github.com/parley-chat/parley/internal/apperrors"
	"github.com/parley-chat/parley/internal/builder"
	"github.com/parley-chat/parley/internal/database"
	"github.com/parley-chat/parley/internal/dto"
)

// Relational реализация проверок на реляционном бэкенде через билдер
type Relational struct {
	db *database.Database
}

func NewRelational(db *database.Database) *Relational {
	return &Relational{db: db}
}

func (p *Relational) roomRow(ctx context.Context, roomUUID uuid.UUID) (dto.Row, error) {
	rows, err := p.db.Builder(database.Rooms).
		Find().
		Where("rooms.uuid = ?", roomUUID).
		Execute(ctx, p.db.Conn())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFound("room")
	}
	return rows[0], nil
}

func (p *Relational) IsInRoom(ctx context.Context, roomUUID, userUUID uuid.UUID, minRole string) (bool, error) {
	if _, err := p.roomRow(ctx, roomUUID); err != nil {
		return false, err
	}

	rows, err := p.db.Builder(database.RoomUsers).
		Find().
		Where("room_users.room_uuid = ?", roomUUID).
		Where("room_users.user_uuid = ?", userUUID).
		Execute(ctx, p.db.Conn())
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	if minRole == "" {
		return true, nil
	}

	role, err := rows[0].Str("room_user_role")
	if err != nil {
		return false, err
	}
	return RoleAtLeast(role, minRole), nil
}

func (p *Relational) IsInRoomByChannel(ctx context.Context, channelUUID, userUUID uuid.UUID, minRole string) (bool, error) {
	rows, err := p.db.Builder(database.Channels).
		Find().
		Where("channels.uuid = ?", channelUUID).
		Execute(ctx, p.db.Conn())
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, apperrors.NewNotFound("channel")
	}

	roomStr, err := rows[0].Str("channel_room_uuid")
	if err != nil {
		return false, err
	}
	roomUUID, err := uuid.Parse(roomStr)
	if err != nil {
		return false, err
	}
	return p.IsInRoom(ctx, roomUUID, userUUID, minRole)
}

func (p *Relational) FileExceedsSingleFileSize(ctx context.Context, roomUUID uuid.UUID, bytes int64) (bool, error) {
	row, err := p.roomRow(ctx, roomUUID)
	if err != nil {
		return false, err
	}
	room, err := dto.NewRoom(row, "room_")
	if err != nil {
		return false, err
	}
	return bytes > room.SingleFileBytesAllowed, nil
}

func (p *Relational) FileExceedsTotalFilesLimit(ctx context.Context, roomUUID uuid.UUID, bytes int64) (bool, error) {
	row, err := p.roomRow(ctx, roomUUID)
	if err != nil {
		return false, err
	}
	room, err := dto.NewRoom(row, "room_")
	if err != nil {
		return false, err
	}
	return room.BytesUsed+bytes > room.TotalFilesBytesAllowed, nil
}

func (p *Relational) UserCountExceedsLimit(ctx context.Context, roomUUID uuid.UUID, add int) (bool, error) {
	row, err := p.roomRow(ctx, roomUUID)
	if err != nil {
		return false, err
	}
	room, err := dto.NewRoom(row, "room_")
	if err != nil {
		return false, err
	}

	count, err := p.count(ctx, database.RoomUsers, "room_users.room_uuid = ?", roomUUID)
	if err != nil {
		return false, err
	}
	return count+int64(add) > room.MaxUsers, nil
}

func (p *Relational) ChannelCountExceedsLimit(ctx context.Context, roomUUID uuid.UUID, add int) (bool, error) {
	row, err := p.roomRow(ctx, roomUUID)
	if err != nil {
		return false, err
	}
	room, err := dto.NewRoom(row, "room_")
	if err != nil {
		return false, err
	}

	count, err := p.count(ctx, database.Channels, "channels.room_uuid = ?", roomUUID)
	if err != nil {
		return false, err
	}
	return count+int64(add) > room.MaxChannels, nil
}

func (p *Relational) count(ctx context.Context, table builder.Table, cond string, arg any) (int64, error) {
	rows, err := p.db.Builder(table).
		Count().
		Where(cond, arg).
		Execute(ctx, p.db.Conn())
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	total, err := rows[0].Int64("total")
	if err != nil {
		return 0, err
	}
	return total, nil
}
