package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/apperrors"
	"github.com/parley-chat/parley/internal/database"
	"github.com/parley-chat/parley/internal/dto"
	"github.com/parley-chat/parley/internal/models"
	"github.com/parley-chat/parley/internal/permissions"
	"github.com/parley-chat/parley/internal/storage"
	"github.com/parley-chat/parley/internal/validators"
)

// RoomDefaults квоты новых комнат из конфигурации
type RoomDefaults struct {
	MaxUsers        int
	MaxChannels     int
	SingleFileBytes int64
	TotalFilesBytes int64
}

// RoomService комнаты: CRUD, участники, инвайт-ссылки, аватар
type RoomService struct {
	db       *database.Database
	perms    permissions.Service
	store    storage.Storage
	defaults RoomDefaults
}

func NewRoomService(db *database.Database, perms permissions.Service, store storage.Storage, defaults RoomDefaults) *RoomService {
	return &RoomService{db: db, perms: perms, store: store, defaults: defaults}
}

type CreateRoomInput struct {
	Name        string
	Description string
	Category    string
	JoinMessage string
	RulesText   string
}

type UpdateRoomInput struct {
	Name        *string
	Description *string
	Category    *string
	JoinMessage *string
	RulesText   *string
	Avatar      *Upload
}

func (s *RoomService) findRow(ctx context.Context, roomUUID uuid.UUID) (dto.Row, error) {
	rows, err := s.db.Builder(database.Rooms).
		Find().
		Include(database.RoomFiles, "room_files.uuid = rooms.avatar_file_uuid").
		Where("rooms.uuid = ?", roomUUID).
		Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFound("room")
	}
	return rows[0], nil
}

func (s *RoomService) FindOne(ctx context.Context, roomUUID, actor uuid.UUID) (*dto.Room, error) {
	member, err := s.perms.IsInRoom(ctx, roomUUID, actor, "")
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.NewRoomMemberRequired()
	}

	row, err := s.findRow(ctx, roomUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewRoom(row, "room_")
}

// FindAll возвращает комнаты, где actor состоит участником
func (s *RoomService) FindAll(ctx context.Context, actor uuid.UUID, pg validators.Pagination) (*Page[*dto.Room], error) {
	if err := pg.Validate(); err != nil {
		return nil, err
	}

	countRows, err := s.db.Builder(database.Rooms).
		Count().
		Include(database.RoomUsers, "room_users.room_uuid = rooms.uuid").
		Where("room_users.user_uuid = ?", actor).
		Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}
	total, err := countRows[0].Int64("total")
	if err != nil {
		return nil, err
	}

	q := s.db.Builder(database.Rooms).
		Find().
		Include(database.RoomUsers, "room_users.room_uuid = rooms.uuid").
		Where("room_users.user_uuid = ?", actor).
		OrderBy("rooms.created_at ASC")
	if pg.Requested() {
		q.Limit(*pg.Limit).Offset(pg.Offset())
	}
	rows, err := q.Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}

	out := make([]*dto.Room, 0, len(rows))
	for _, row := range rows {
		room, err := dto.NewRoom(row, "room_")
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return newPage(total, out, pg), nil
}

// Create создаёт комнату, делает создателя админом и выпускает инвайт-ссылку
func (s *RoomService) Create(ctx context.Context, actor uuid.UUID, in CreateRoomInput) (*dto.Room, error) {
	if err := validators.RequireString(in.Name, "name"); err != nil {
		return nil, err
	}

	var existing int64
	if err := s.db.Gorm().WithContext(ctx).Model(&models.Room{}).Where("name = ?", in.Name).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, apperrors.NewDuplicate("room", "name", in.Name)
	}

	room := models.Room{
		UUID:                   uuid.New(),
		Name:                   in.Name,
		Description:            in.Description,
		Category:               in.Category,
		JoinMessage:            in.JoinMessage,
		RulesText:              in.RulesText,
		MaxUsers:               s.defaults.MaxUsers,
		MaxChannels:            s.defaults.MaxChannels,
		SingleFileBytesAllowed: s.defaults.SingleFileBytes,
		TotalFilesBytesAllowed: s.defaults.TotalFilesBytes,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.RoomUser{
			RoomUUID: room.UUID,
			UserUUID: actor,
			Role:     models.RoleAdmin,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.RoomInviteLink{
			RoomUUID: room.UUID,
			Token:    uuid.NewString(),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	row, err := s.findRow(ctx, room.UUID)
	if err != nil {
		return nil, err
	}
	return dto.NewRoom(row, "room_")
}

// Update меняет поля комнаты; новый аватар грузится до транзакции,
// старый файл удаляется из хранилища только после коммита
func (s *RoomService) Update(ctx context.Context, roomUUID, actor uuid.UUID, in UpdateRoomInput) (*dto.Room, error) {
	admin, err := s.perms.IsInRoom(ctx, roomUUID, actor, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, apperrors.NewAdminRequired()
	}

	var room models.Room
	if err := s.db.Gorm().WithContext(ctx).First(&room, "uuid = ?", roomUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("room")
		}
		return nil, err
	}

	var oldAvatar *models.RoomFile
	if in.Avatar != nil && room.AvatarFileUUID != nil {
		var old models.RoomFile
		if err := s.db.Gorm().WithContext(ctx).First(&old, "uuid = ?", *room.AvatarFileUUID).Error; err == nil {
			oldAvatar = &old
		}
	}

	var newAvatarKey, newAvatarSrc string
	var newAvatarUUID uuid.UUID
	if in.Avatar != nil {
		if err := validators.FileUpload(in.Avatar.Size, "avatar"); err != nil {
			return nil, err
		}
		exceeds, err := s.perms.FileExceedsSingleFileSize(ctx, roomUUID, in.Avatar.Size)
		if err != nil {
			return nil, err
		}
		if exceeds {
			return nil, apperrors.NewExceedsSingleFileSize()
		}

		// Старый аватар уходит той же транзакцией, поэтому общая квота
		// проверяется по чистому приросту
		delta := in.Avatar.Size
		if oldAvatar != nil {
			delta -= oldAvatar.Size
		}
		exceeds, err = s.perms.FileExceedsTotalFilesLimit(ctx, roomUUID, delta)
		if err != nil {
			return nil, err
		}
		if exceeds {
			return nil, apperrors.NewExceedsTotalFiles()
		}

		newAvatarUUID = uuid.New()
		newAvatarKey = blobKey(roomUUID, newAvatarUUID, in.Avatar.Name)
		newAvatarSrc, err = s.store.Upload(ctx, newAvatarKey, in.Avatar.Reader, in.Avatar.Size)
		if err != nil {
			return nil, err
		}
	}

	var oldAvatarSrc string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if in.Name != nil {
			room.Name = *in.Name
		}
		if in.Description != nil {
			room.Description = *in.Description
		}
		if in.Category != nil {
			room.Category = *in.Category
		}
		if in.JoinMessage != nil {
			room.JoinMessage = *in.JoinMessage
		}
		if in.RulesText != nil {
			room.RulesText = *in.RulesText
		}

		if in.Avatar != nil {
			if oldAvatar != nil {
				oldAvatarSrc = oldAvatar.Src
				if err := tx.Delete(&models.RoomFile{}, "uuid = ?", oldAvatar.UUID).Error; err != nil {
					return err
				}
				if err := addBytesUsed(tx, roomUUID, -oldAvatar.Size); err != nil {
					return err
				}
			}

			if err := tx.Create(&models.RoomFile{
				UUID:      newAvatarUUID,
				RoomUUID:  roomUUID,
				OwnerUUID: &actor,
				Src:       newAvatarSrc,
				Size:      in.Avatar.Size,
				Type:      models.FileTypeRoomAvatar,
			}).Error; err != nil {
				return err
			}
			if err := addBytesUsed(tx, roomUUID, in.Avatar.Size); err != nil {
				return err
			}
			room.AvatarFileUUID = &newAvatarUUID
		}

		return tx.Save(&room).Error
	})
	if err != nil {
		if in.Avatar != nil {
			cleanupBlob(ctx, s.store, newAvatarKey)
		}
		return nil, err
	}

	if oldAvatarSrc != "" {
		cleanupSrc(ctx, s.store, oldAvatarSrc)
	}

	row, err := s.findRow(ctx, roomUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewRoom(row, "room_")
}

// Destroy каскадно удаляет комнату; блобы чистятся после коммита
func (s *RoomService) Destroy(ctx context.Context, roomUUID, actor uuid.UUID) error {
	admin, err := s.perms.IsInRoom(ctx, roomUUID, actor, models.RoleAdmin)
	if err != nil {
		return err
	}
	if !admin {
		return apperrors.NewAdminRequired()
	}

	var files []models.RoomFile
	if err := s.db.Gorm().WithContext(ctx).Where("room_uuid = ?", roomUUID).Find(&files).Error; err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var channelUUIDs []uuid.UUID
		if err := tx.Model(&models.Channel{}).Where("room_uuid = ?", roomUUID).Pluck("uuid", &channelUUIDs).Error; err != nil {
			return err
		}
		if len(channelUUIDs) > 0 {
			if err := tx.Delete(&models.ChannelMessage{}, "channel_uuid IN ?", channelUUIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.ChannelWebhook{}, "channel_uuid IN ?", channelUUIDs).Error; err != nil {
				return err
			}
		}
		for _, m := range []any{
			&models.Channel{}, &models.RoomFile{}, &models.RoomUser{}, &models.RoomInviteLink{},
		} {
			if err := tx.Delete(m, "room_uuid = ?", roomUUID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Room{}, "uuid = ?", roomUUID).Error
	})
	if err != nil {
		return err
	}

	for _, f := range files {
		cleanupSrc(ctx, s.store, f.Src)
	}
	return nil
}

// InviteLink возвращает действующую инвайт-ссылку комнаты
func (s *RoomService) InviteLink(ctx context.Context, roomUUID, actor uuid.UUID) (*dto.RoomInviteLink, error) {
	admin, err := s.perms.IsInRoom(ctx, roomUUID, actor, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, apperrors.NewAdminRequired()
	}

	rows, err := s.db.Builder(database.RoomInviteLinks).
		Find().
		Where("room_invite_links.room_uuid = ?", roomUUID).
		Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFound("room_invite_link")
	}
	return dto.NewRoomInviteLink(rows[0], "room_invite_link_")
}

// RefreshInviteLink перевыпускает токен ссылки
func (s *RoomService) RefreshInviteLink(ctx context.Context, roomUUID, actor uuid.UUID) (*dto.RoomInviteLink, error) {
	if _, err := s.InviteLink(ctx, roomUUID, actor); err != nil {
		return nil, err
	}

	err := s.db.Gorm().WithContext(ctx).Model(&models.RoomInviteLink{}).
		Where("room_uuid = ?", roomUUID).
		Update("token", uuid.NewString()).Error
	if err != nil {
		return nil, err
	}
	return s.InviteLink(ctx, roomUUID, actor)
}

// JoinByInvite вступление по токену с проверкой квоты участников
func (s *RoomService) JoinByInvite(ctx context.Context, token string, actor uuid.UUID) (*dto.Room, error) {
	if err := validators.RequireString(token, "token"); err != nil {
		return nil, err
	}

	var link models.RoomInviteLink
	if err := s.db.Gorm().WithContext(ctx).First(&link, "token = ?", token).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("room_invite_link")
		}
		return nil, err
	}
	if link.ExpiresAt != nil && link.ExpiresAt.Before(time.Now()) {
		return nil, apperrors.NewExpired("room_invite_link")
	}

	member, err := s.perms.IsInRoom(ctx, link.RoomUUID, actor, "")
	if err != nil {
		return nil, err
	}
	if member {
		return nil, apperrors.NewDuplicate("room_user", "user_uuid", actor)
	}

	full, err := s.perms.UserCountExceedsLimit(ctx, link.RoomUUID, 1)
	if err != nil {
		return nil, err
	}
	if full {
		return nil, apperrors.NewValidation("room is full")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&models.RoomUser{
			RoomUUID: link.RoomUUID,
			UserUUID: actor,
			Role:     models.RoleMember,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	row, err := s.findRow(ctx, link.RoomUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewRoom(row, "room_")
}

// Leave выход из комнаты; последний админ выйти не может
func (s *RoomService) Leave(ctx context.Context, roomUUID, actor uuid.UUID) error {
	var ru models.RoomUser
	if err := s.db.Gorm().WithContext(ctx).First(&ru, "room_uuid = ? AND user_uuid = ?", roomUUID, actor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NewRoomMemberRequired()
		}
		return err
	}

	if ru.Role == models.RoleAdmin {
		admins, err := s.adminCount(ctx, roomUUID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return apperrors.NewValidation("the last admin cannot leave the room")
		}
	}

	return s.db.Gorm().WithContext(ctx).Delete(&models.RoomUser{}, "uuid = ?", ru.UUID).Error
}

// adminCount число админов комнаты; в комнате всегда остаётся хотя бы один
func (s *RoomService) adminCount(ctx context.Context, roomUUID uuid.UUID) (int64, error) {
	var admins int64
	err := s.db.Gorm().WithContext(ctx).Model(&models.RoomUser{}).
		Where("room_uuid = ? AND role = ?", roomUUID, models.RoleAdmin).
		Count(&admins).Error
	return admins, err
}

// Members участники комнаты с вложенными пользователями
func (s *RoomService) Members(ctx context.Context, roomUUID, actor uuid.UUID, pg validators.Pagination) (*Page[*dto.RoomUser], error) {
	if err := pg.Validate(); err != nil {
		return nil, err
	}
	member, err := s.perms.IsInRoom(ctx, roomUUID, actor, "")
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.NewRoomMemberRequired()
	}

	countRows, err := s.db.Builder(database.RoomUsers).
		Count().
		Where("room_users.room_uuid = ?", roomUUID).
		Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}
	total, err := countRows[0].Int64("total")
	if err != nil {
		return nil, err
	}

	q := s.db.Builder(database.RoomUsers).
		Find().
		Include(database.Users, "users.uuid = room_users.user_uuid").
		Where("room_users.room_uuid = ?", roomUUID).
		OrderBy("room_users.created_at ASC")
	if pg.Requested() {
		q.Limit(*pg.Limit).Offset(pg.Offset())
	}
	rows, err := q.Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}

	out := make([]*dto.RoomUser, 0, len(rows))
	for _, row := range rows {
		ru, err := dto.NewRoomUser(row, "room_user_")
		if err != nil {
			return nil, err
		}
		out = append(out, ru)
	}
	return newPage(total, out, pg), nil
}

// UpdateMemberRole смена роли участника, только админом.
// Разжаловать последнего админа нельзя
func (s *RoomService) UpdateMemberRole(ctx context.Context, roomUUID, target uuid.UUID, role string, actor uuid.UUID) error {
	if err := validators.RoomRole(role); err != nil {
		return err
	}
	admin, err := s.perms.IsInRoom(ctx, roomUUID, actor, models.RoleAdmin)
	if err != nil {
		return err
	}
	if !admin {
		return apperrors.NewAdminRequired()
	}

	var ru models.RoomUser
	if err := s.db.Gorm().WithContext(ctx).First(&ru, "room_uuid = ? AND user_uuid = ?", roomUUID, target).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NewNotFound("room_user")
		}
		return err
	}

	if ru.Role == models.RoleAdmin && role != models.RoleAdmin {
		admins, err := s.adminCount(ctx, roomUUID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return apperrors.NewValidation("the room must keep at least one admin")
		}
	}

	return s.db.Gorm().WithContext(ctx).Model(&models.RoomUser{}).
		Where("uuid = ?", ru.UUID).
		Update("role", role).Error
}

// Kick исключение участника; модератору нельзя трогать админов,
// последний админ неприкосновенен
func (s *RoomService) Kick(ctx context.Context, roomUUID, target, actor uuid.UUID) error {
	mod, err := s.perms.IsInRoom(ctx, roomUUID, actor, models.RoleModerator)
	if err != nil {
		return err
	}
	if !mod {
		return apperrors.NewOwnershipOrMod()
	}

	var ru models.RoomUser
	if err := s.db.Gorm().WithContext(ctx).First(&ru, "room_uuid = ? AND user_uuid = ?", roomUUID, target).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NewNotFound("room_user")
		}
		return err
	}

	if ru.Role == models.RoleAdmin {
		admin, err := s.perms.IsInRoom(ctx, roomUUID, actor, models.RoleAdmin)
		if err != nil {
			return err
		}
		if !admin {
			return apperrors.NewAdminRequired()
		}
		admins, err := s.adminCount(ctx, roomUUID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return apperrors.NewValidation("the room must keep at least one admin")
		}
	}

	return s.db.Gorm().WithContext(ctx).Delete(&models.RoomUser{}, "uuid = ?", ru.UUID).Error
}
