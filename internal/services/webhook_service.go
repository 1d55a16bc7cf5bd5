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

// WebhookService вебхуки каналов, не более одного на канал.
// PostMessage единственная операция без актора: пишет от имени вебхука
type WebhookService struct {
	db       *database.Database
	perms    permissions.Service
	store    storage.Storage
	notifier Notifier
}

func NewWebhookService(db *database.Database, perms permissions.Service, store storage.Storage, notifier Notifier) *WebhookService {
	return &WebhookService{db: db, perms: perms, store: store, notifier: notifier}
}

type CreateWebhookInput struct {
	Name   string
	Avatar *Upload
}

func (s *WebhookService) findRow(ctx context.Context, webhookUUID uuid.UUID) (dto.Row, error) {
	rows, err := s.db.Builder(database.ChannelWebhooks).
		Find().
		Include(database.RoomFiles, "room_files.uuid = channel_webhooks.avatar_file_uuid").
		Where("channel_webhooks.uuid = ?", webhookUUID).
		Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFound("channel_webhook")
	}
	return rows[0], nil
}

func (s *WebhookService) FindOne(ctx context.Context, webhookUUID, actor uuid.UUID) (*dto.ChannelWebhook, error) {
	row, err := s.findRow(ctx, webhookUUID)
	if err != nil {
		return nil, err
	}
	webhook, err := dto.NewChannelWebhook(row, "channel_webhook_")
	if err != nil {
		return nil, err
	}

	channelUUID, err := uuid.Parse(webhook.ChannelUUID)
	if err != nil {
		return nil, err
	}
	member, err := s.perms.IsInRoomByChannel(ctx, channelUUID, actor, "")
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.NewRoomMemberRequired()
	}
	return webhook, nil
}

// Create вебхук канала админом; второй на тот же канал отклоняется
// до записи, чтобы отдать доменную ошибку вместо ошибки БД
func (s *WebhookService) Create(ctx context.Context, channelUUID, actor uuid.UUID, in CreateWebhookInput) (*dto.ChannelWebhook, error) {
	if err := validators.RequireString(in.Name, "name"); err != nil {
		return nil, err
	}
	admin, err := s.perms.IsInRoomByChannel(ctx, channelUUID, actor, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, apperrors.NewAdminRequired()
	}

	var existing int64
	if err := s.db.Gorm().WithContext(ctx).Model(&models.ChannelWebhook{}).
		Where("channel_uuid = ?", channelUUID).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, apperrors.NewDuplicate("channel_webhook", "channel_uuid", channelUUID)
	}

	var channel models.Channel
	if err := s.db.Gorm().WithContext(ctx).First(&channel, "uuid = ?", channelUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("channel")
		}
		return nil, err
	}

	var avatarKey, avatarSrc string
	var avatarUUID uuid.UUID
	if in.Avatar != nil {
		if err := validators.FileUpload(in.Avatar.Size, "avatar"); err != nil {
			return nil, err
		}
		exceeds, err := s.perms.FileExceedsSingleFileSize(ctx, channel.RoomUUID, in.Avatar.Size)
		if err != nil {
			return nil, err
		}
		if exceeds {
			return nil, apperrors.NewExceedsSingleFileSize()
		}
		exceeds, err = s.perms.FileExceedsTotalFilesLimit(ctx, channel.RoomUUID, in.Avatar.Size)
		if err != nil {
			return nil, err
		}
		if exceeds {
			return nil, apperrors.NewExceedsTotalFiles()
		}

		avatarUUID = uuid.New()
		avatarKey = blobKey(channel.RoomUUID, avatarUUID, in.Avatar.Name)
		avatarSrc, err = s.store.Upload(ctx, avatarKey, in.Avatar.Reader, in.Avatar.Size)
		if err != nil {
			return nil, err
		}
	}

	webhook := models.ChannelWebhook{
		UUID:        uuid.New(),
		ChannelUUID: channelUUID,
		Name:        in.Name,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if in.Avatar != nil {
			if err := tx.Create(&models.RoomFile{
				UUID:      avatarUUID,
				RoomUUID:  channel.RoomUUID,
				OwnerUUID: &actor,
				Src:       avatarSrc,
				Size:      in.Avatar.Size,
				Type:      models.FileTypeWebhookAvatar,
			}).Error; err != nil {
				return err
			}
			if err := addBytesUsed(tx, channel.RoomUUID, in.Avatar.Size); err != nil {
				return err
			}
			webhook.AvatarFileUUID = &avatarUUID
		}
		return tx.Create(&webhook).Error
	})
	if err != nil {
		if in.Avatar != nil {
			cleanupBlob(ctx, s.store, avatarKey)
		}
		return nil, err
	}

	row, err := s.findRow(ctx, webhook.UUID)
	if err != nil {
		return nil, err
	}
	return dto.NewChannelWebhook(row, "channel_webhook_")
}

// PostMessage сообщение от имени вебхука, актор не участвует
func (s *WebhookService) PostMessage(ctx context.Context, webhookUUID uuid.UUID, body string) (*dto.ChannelMessage, error) {
	if err := validators.RequireString(body, "body"); err != nil {
		return nil, err
	}

	var webhook models.ChannelWebhook
	if err := s.db.Gorm().WithContext(ctx).First(&webhook, "uuid = ?", webhookUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("channel_webhook")
		}
		return nil, err
	}

	message := models.ChannelMessage{
		UUID:        uuid.New(),
		ChannelUUID: webhook.ChannelUUID,
		Body:        body,
		Type:        models.MessageTypeWebhook,
		WebhookUUID: &webhook.UUID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&message).Error
	})
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Builder(database.ChannelMessages).
		Find().
		Include(database.ChannelWebhooks, "channel_webhooks.uuid = channel_messages.webhook_uuid").
		Where("channel_messages.uuid = ?", message.UUID).
		Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFound("channel_message")
	}
	msg, err := dto.NewChannelMessage(rows[0], "channel_message_")
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.NotifyChannel(webhook.ChannelUUID, EventMessageCreated, msg)
	}
	return msg, nil
}

// Destroy удаляет вебхук; его сообщения остаются, ссылка на источник
// обнуляется, аватар чистится после коммита
func (s *WebhookService) Destroy(ctx context.Context, webhookUUID, actor uuid.UUID) error {
	var webhook models.ChannelWebhook
	if err := s.db.Gorm().WithContext(ctx).First(&webhook, "uuid = ?", webhookUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NewNotFound("channel_webhook")
		}
		return err
	}

	admin, err := s.perms.IsInRoomByChannel(ctx, webhook.ChannelUUID, actor, models.RoleAdmin)
	if err != nil {
		return err
	}
	if !admin {
		return apperrors.NewAdminRequired()
	}

	var avatar *models.RoomFile
	if webhook.AvatarFileUUID != nil {
		var f models.RoomFile
		if err := s.db.Gorm().WithContext(ctx).First(&f, "uuid = ?", *webhook.AvatarFileUUID).Error; err == nil {
			avatar = &f
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ChannelMessage{}).
			Where("webhook_uuid = ?", webhookUUID).
			Update("webhook_uuid", nil).Error; err != nil {
			return err
		}
		if avatar != nil {
			if err := tx.Delete(&models.RoomFile{}, "uuid = ?", avatar.UUID).Error; err != nil {
				return err
			}
			if err := addBytesUsed(tx, avatar.RoomUUID, -avatar.Size); err != nil {
				return err
			}
		}
		return tx.Delete(&models.ChannelWebhook{}, "uuid = ?", webhookUUID).Error
	})
	if err != nil {
		return err
	}

	if avatar != nil {
		cleanupSrc(ctx, s.store, avatar.Src)
	}
	return nil
}
