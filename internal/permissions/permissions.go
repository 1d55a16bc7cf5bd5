package permissions

import (
	"context"

	"github.com/google/uuid"
)

// Service проверки членства, ролей и квот комнаты. Только чтение;
// безопасен при конкурентных записях. Все методы возвращают
// EntityNotFoundError, если комната или канал не находятся
type Service interface {
	// IsInRoom сообщает, состоит ли пользователь в комнате.
	// minRole пустой — достаточно любой роли, иначе роль пользователя
	// должна быть не ниже minRole
	IsInRoom(ctx context.Context, roomUUID, userUUID uuid.UUID, minRole string) (bool, error)

	// IsInRoomByChannel определяет комнату по каналу и делегирует в IsInRoom
	IsInRoomByChannel(ctx context.Context, channelUUID, userUUID uuid.UUID, minRole string) (bool, error)

	// FileExceedsSingleFileSize true, если bytes больше лимита одного файла
	FileExceedsSingleFileSize(ctx context.Context, roomUUID uuid.UUID, bytes int64) (bool, error)

	// FileExceedsTotalFilesLimit true, если bytes_used + bytes больше общего лимита
	FileExceedsTotalFilesLimit(ctx context.Context, roomUUID uuid.UUID, bytes int64) (bool, error)

	// UserCountExceedsLimit true, если текущее число участников + add больше max_users
	UserCountExceedsLimit(ctx context.Context, roomUUID uuid.UUID, add int) (bool, error)

	// ChannelCountExceedsLimit true, если текущее число каналов + add больше max_channels
	ChannelCountExceedsLimit(ctx context.Context, roomUUID uuid.UUID, add int) (bool, error)
}

// Ранги ролей: Admin > Moderator > Member
var roleRank = map[string]int{
	"Admin":     3,
	"Moderator": 2,
	"Member":    1,
}

// RoleAtLeast иерархическое сравнение ролей: проверка на Moderator
// принимает и Admin. Неизвестные роли ранга не имеют
func RoleAtLeast(role, minRole string) bool {
	r, ok := roleRank[role]
	if !ok {
		return false
	}
	min, ok := roleRank[minRole]
	if !ok {
		return false
	}
	return r >= min
}
