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

// MessageService сообщения канала; создание с вложением идёт по тому же
// порядку, что и файлы комнаты: квоты, блоб, транзакция
type MessageService struct {
	db       *database.Database
	perms    permissions.Service
	store    storage.Storage
	notifier Notifier
}

func NewMessageService(db *database.Database, perms permissions.Service, store storage.Storage, notifier Notifier) *MessageService {
	return &MessageService{db: db, perms: perms, store: store, notifier: notifier}
}

type CreateMessageInput struct {
	Body   string
	Upload *Upload
}

func (s *MessageService) findRow(ctx context.Context, messageUUID uuid.UUID) (dto.Row, error) {
	rows, err := s.db.Builder(database.ChannelMessages).
		Find().
		Include(database.Users, "users.uuid = channel_messages.user_uuid").
		Include(database.RoomFiles, "room_files.uuid = channel_messages.upload_file_uuid").
		Include(database.ChannelWebhooks, "channel_webhooks.uuid = channel_messages.webhook_uuid").
		Where("channel_messages.uuid = ?", messageUUID).
		Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFound("channel_message")
	}
	return rows[0], nil
}

func (s *MessageService) FindOne(ctx context.Context, messageUUID, actor uuid.UUID) (*dto.ChannelMessage, error) {
	row, err := s.findRow(ctx, messageUUID)
	if err != nil {
		return nil, err
	}
	msg, err := dto.NewChannelMessage(row, "channel_message_")
	if err != nil {
		return nil, err
	}

	channelUUID, err := uuid.Parse(msg.ChannelUUID)
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
	return msg, nil
}

// FindAll сообщения канала, новые первыми
func (s *MessageService) FindAll(ctx context.Context, channelUUID, actor uuid.UUID, pg validators.Pagination) (*Page[*dto.ChannelMessage], error) {
	if err := pg.Validate(); err != nil {
		return nil, err
	}
	member, err := s.perms.IsInRoomByChannel(ctx, channelUUID, actor, "")
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.NewRoomMemberRequired()
	}

	countRows, err := s.db.Builder(database.ChannelMessages).
		Count().
		Where("channel_messages.channel_uuid = ?", channelUUID).
		Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}
	total, err := countRows[0].Int64("total")
	if err != nil {
		return nil, err
	}

	q := s.db.Builder(database.ChannelMessages).
		Find().
		Include(database.Users, "users.uuid = channel_messages.user_uuid").
		Include(database.RoomFiles, "room_files.uuid = channel_messages.upload_file_uuid").
		Include(database.ChannelWebhooks, "channel_webhooks.uuid = channel_messages.webhook_uuid").
		Where("channel_messages.channel_uuid = ?", channelUUID).
		OrderBy("channel_messages.created_at DESC")
	if pg.Requested() {
		q.Limit(*pg.Limit).Offset(pg.Offset())
	}
	rows, err := q.Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ChannelMessage, 0, len(rows))
	for _, row := range rows {
		msg, err := dto.NewChannelMessage(row, "channel_message_")
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return newPage(total, out, pg), nil
}

// Create сообщение от участника; вложение проходит квоты комнаты,
// блоб грузится до транзакции и компенсируется при её падении
func (s *MessageService) Create(ctx context.Context, channelUUID, actor uuid.UUID, in CreateMessageInput) (*dto.ChannelMessage, error) {
	if in.Upload == nil {
		if err := validators.RequireString(in.Body, "body"); err != nil {
			return nil, err
		}
	}

	member, err := s.perms.IsInRoomByChannel(ctx, channelUUID, actor, "")
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.NewRoomMemberRequired()
	}

	var channel models.Channel
	if err := s.db.Gorm().WithContext(ctx).First(&channel, "uuid = ?", channelUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("channel")
		}
		return nil, err
	}

	var uploadKey, uploadSrc string
	var uploadUUID uuid.UUID
	if in.Upload != nil {
		if err := validators.RequireString(in.Upload.Name, "file name"); err != nil {
			return nil, err
		}
		if err := validators.FileUpload(in.Upload.Size, "file"); err != nil {
			return nil, err
		}
		exceeds, err := s.perms.FileExceedsSingleFileSize(ctx, channel.RoomUUID, in.Upload.Size)
		if err != nil {
			return nil, err
		}
		if exceeds {
			return nil, apperrors.NewExceedsSingleFileSize()
		}
		exceeds, err = s.perms.FileExceedsTotalFilesLimit(ctx, channel.RoomUUID, in.Upload.Size)
		if err != nil {
			return nil, err
		}
		if exceeds {
			return nil, apperrors.NewExceedsTotalFiles()
		}

		uploadUUID = uuid.New()
		uploadKey = blobKey(channel.RoomUUID, uploadUUID, in.Upload.Name)
		uploadSrc, err = s.store.Upload(ctx, uploadKey, in.Upload.Reader, in.Upload.Size)
		if err != nil {
			return nil, err
		}
	}

	message := models.ChannelMessage{
		UUID:        uuid.New(),
		ChannelUUID: channelUUID,
		UserUUID:    &actor,
		Body:        in.Body,
		Type:        models.MessageTypeUser,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if in.Upload != nil {
			if err := tx.Create(&models.RoomFile{
				UUID:      uploadUUID,
				RoomUUID:  channel.RoomUUID,
				OwnerUUID: &actor,
				Src:       uploadSrc,
				Size:      in.Upload.Size,
				Type:      models.FileTypeMessageUpload,
			}).Error; err != nil {
				return err
			}
			if err := addBytesUsed(tx, channel.RoomUUID, in.Upload.Size); err != nil {
				return err
			}
			message.UploadFileUUID = &uploadUUID
		}
		return tx.Create(&message).Error
	})
	if err != nil {
		if in.Upload != nil {
			cleanupBlob(ctx, s.store, uploadKey)
		}
		return nil, err
	}

	row, err := s.findRow(ctx, message.UUID)
	if err != nil {
		return nil, err
	}
	msg, err := dto.NewChannelMessage(row, "channel_message_")
	if err != nil {
		return nil, err
	}
	s.notify(channelUUID, EventMessageCreated, msg)
	return msg, nil
}

// Update редактирование только автором, фиксирует edited_at
func (s *MessageService) Update(ctx context.Context, messageUUID, actor uuid.UUID, body string) (*dto.ChannelMessage, error) {
	if err := validators.RequireString(body, "body"); err != nil {
		return nil, err
	}

	var message models.ChannelMessage
	if err := s.db.Gorm().WithContext(ctx).First(&message, "uuid = ?", messageUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("channel_message")
		}
		return nil, err
	}
	if message.UserUUID == nil || *message.UserUUID != actor {
		return nil, apperrors.NewOwnershipOrMod()
	}

	now := time.Now()
	message.Body = body
	message.EditedAt = &now
	if err := s.db.Gorm().WithContext(ctx).Save(&message).Error; err != nil {
		return nil, err
	}

	row, err := s.findRow(ctx, messageUUID)
	if err != nil {
		return nil, err
	}
	msg, err := dto.NewChannelMessage(row, "channel_message_")
	if err != nil {
		return nil, err
	}
	s.notify(message.ChannelUUID, EventMessageUpdated, msg)
	return msg, nil
}

// Destroy удаление автором либо ролью не ниже модератора;
// вложение удаляется вместе с сообщением, блоб после коммита
func (s *MessageService) Destroy(ctx context.Context, messageUUID, actor uuid.UUID) error {
	var message models.ChannelMessage
	if err := s.db.Gorm().WithContext(ctx).First(&message, "uuid = ?", messageUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NewNotFound("channel_message")
		}
		return err
	}

	author := message.UserUUID != nil && *message.UserUUID == actor
	if !author {
		mod, err := s.perms.IsInRoomByChannel(ctx, message.ChannelUUID, actor, models.RoleModerator)
		if err != nil {
			return err
		}
		if !mod {
			return apperrors.NewOwnershipOrMod()
		}
	}

	var upload *models.RoomFile
	if message.UploadFileUUID != nil {
		var f models.RoomFile
		if err := s.db.Gorm().WithContext(ctx).First(&f, "uuid = ?", *message.UploadFileUUID).Error; err == nil {
			upload = &f
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ChannelMessage{}, "uuid = ?", messageUUID).Error; err != nil {
			return err
		}
		if upload != nil {
			if err := tx.Delete(&models.RoomFile{}, "uuid = ?", upload.UUID).Error; err != nil {
				return err
			}
			return addBytesUsed(tx, upload.RoomUUID, -upload.Size)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if upload != nil {
		cleanupSrc(ctx, s.store, upload.Src)
	}
	s.notify(message.ChannelUUID, EventMessageDeleted, map[string]string{"uuid": messageUUID.String()})
	return nil
}

func (s *MessageService) notify(channelUUID uuid.UUID, event string, payload any) {
	if s.notifier != nil {
		s.notifier.NotifyChannel(channelUUID, event, payload)
	}
}
