package services

import (
	"context"

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

// ChannelService каналы комнаты с квотой на их количество
type ChannelService struct {
	db    *database.Database
	perms permissions.Service
	store storage.Storage
}

func NewChannelService(db *database.Database, perms permissions.Service, store storage.Storage) *ChannelService {
	return &ChannelService{db: db, perms: perms, store: store}
}

type CreateChannelInput struct {
	Name        string
	Description string
	Type        string
}

type UpdateChannelInput struct {
	Name        *string
	Description *string
}

func (s *ChannelService) findRow(ctx context.Context, channelUUID uuid.UUID) (dto.Row, error) {
	rows, err := s.db.Builder(database.Channels).
		Find().
		Include(database.ChannelWebhooks, "channel_webhooks.channel_uuid = channels.uuid").
		Where("channels.uuid = ?", channelUUID).
		Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFound("channel")
	}
	return rows[0], nil
}

func (s *ChannelService) FindOne(ctx context.Context, channelUUID, actor uuid.UUID) (*dto.Channel, error) {
	member, err := s.perms.IsInRoomByChannel(ctx, channelUUID, actor, "")
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.NewRoomMemberRequired()
	}

	row, err := s.findRow(ctx, channelUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewChannel(row, "channel_")
}

func (s *ChannelService) FindAll(ctx context.Context, roomUUID, actor uuid.UUID, pg validators.Pagination) (*Page[*dto.Channel], error) {
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

	countRows, err := s.db.Builder(database.Channels).
		Count().
		Where("channels.room_uuid = ?", roomUUID).
		Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}
	total, err := countRows[0].Int64("total")
	if err != nil {
		return nil, err
	}

	q := s.db.Builder(database.Channels).
		Find().
		Include(database.ChannelWebhooks, "channel_webhooks.channel_uuid = channels.uuid").
		Where("channels.room_uuid = ?", roomUUID).
		OrderBy("channels.created_at ASC")
	if pg.Requested() {
		q.Limit(*pg.Limit).Offset(pg.Offset())
	}
	rows, err := q.Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}

	out := make([]*dto.Channel, 0, len(rows))
	for _, row := range rows {
		ch, err := dto.NewChannel(row, "channel_")
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return newPage(total, out, pg), nil
}

// Create создание канала админом; квота max_channels проверяется до записи
func (s *ChannelService) Create(ctx context.Context, roomUUID, actor uuid.UUID, in CreateChannelInput) (*dto.Channel, error) {
	if err := validators.RequireString(in.Name, "name"); err != nil {
		return nil, err
	}
	if err := validators.ChannelType(in.Type); err != nil {
		return nil, err
	}

	admin, err := s.perms.IsInRoom(ctx, roomUUID, actor, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, apperrors.NewAdminRequired()
	}

	exceeds, err := s.perms.ChannelCountExceedsLimit(ctx, roomUUID, 1)
	if err != nil {
		return nil, err
	}
	if exceeds {
		return nil, apperrors.NewValidation("room channel limit reached")
	}

	channel := models.Channel{
		UUID:        uuid.New(),
		RoomUUID:    roomUUID,
		Name:        in.Name,
		Description: in.Description,
		Type:        in.Type,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&channel).Error
	})
	if err != nil {
		return nil, err
	}

	row, err := s.findRow(ctx, channel.UUID)
	if err != nil {
		return nil, err
	}
	return dto.NewChannel(row, "channel_")
}

func (s *ChannelService) Update(ctx context.Context, channelUUID, actor uuid.UUID, in UpdateChannelInput) (*dto.Channel, error) {
	admin, err := s.perms.IsInRoomByChannel(ctx, channelUUID, actor, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, apperrors.NewAdminRequired()
	}

	var channel models.Channel
	if err := s.db.Gorm().WithContext(ctx).First(&channel, "uuid = ?", channelUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("channel")
		}
		return nil, err
	}

	if in.Name != nil {
		if err := validators.RequireString(*in.Name, "name"); err != nil {
			return nil, err
		}
		channel.Name = *in.Name
	}
	if in.Description != nil {
		channel.Description = *in.Description
	}
	if err := s.db.Gorm().WithContext(ctx).Save(&channel).Error; err != nil {
		return nil, err
	}

	row, err := s.findRow(ctx, channelUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewChannel(row, "channel_")
}

// Destroy удаляет канал вместе с сообщениями, вебхуком и файлами
// загрузок; блобы чистятся после коммита
func (s *ChannelService) Destroy(ctx context.Context, channelUUID, actor uuid.UUID) error {
	admin, err := s.perms.IsInRoomByChannel(ctx, channelUUID, actor, models.RoleAdmin)
	if err != nil {
		return err
	}
	if !admin {
		return apperrors.NewAdminRequired()
	}

	var channel models.Channel
	if err := s.db.Gorm().WithContext(ctx).First(&channel, "uuid = ?", channelUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NewNotFound("channel")
		}
		return err
	}

	// Файлы, прикреплённые к сообщениям канала, и аватар его вебхука
	// уходят вместе с каналом
	var fileUUIDs []uuid.UUID
	if err := s.db.Gorm().WithContext(ctx).Model(&models.ChannelMessage{}).
		Where("channel_uuid = ? AND upload_file_uuid IS NOT NULL", channelUUID).
		Pluck("upload_file_uuid", &fileUUIDs).Error; err != nil {
		return err
	}
	var avatarUUIDs []uuid.UUID
	if err := s.db.Gorm().WithContext(ctx).Model(&models.ChannelWebhook{}).
		Where("channel_uuid = ? AND avatar_file_uuid IS NOT NULL", channelUUID).
		Pluck("avatar_file_uuid", &avatarUUIDs).Error; err != nil {
		return err
	}
	fileUUIDs = append(fileUUIDs, avatarUUIDs...)

	var files []models.RoomFile
	if len(fileUUIDs) > 0 {
		if err := s.db.Gorm().WithContext(ctx).Where("uuid IN ?", fileUUIDs).Find(&files).Error; err != nil {
			return err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ChannelMessage{}, "channel_uuid = ?", channelUUID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ChannelWebhook{}, "channel_uuid = ?", channelUUID).Error; err != nil {
			return err
		}
		for _, f := range files {
			if err := tx.Delete(&models.RoomFile{}, "uuid = ?", f.UUID).Error; err != nil {
				return err
			}
			if err := addBytesUsed(tx, f.RoomUUID, -f.Size); err != nil {
				return err
			}
		}
		return tx.Delete(&models.Channel{}, "uuid = ?", channelUUID).Error
	})
	if err != nil {
		return err
	}

	for _, f := range files {
		cleanupSrc(ctx, s.store, f.Src)
	}
	return nil
}
