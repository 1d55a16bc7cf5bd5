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

// RoomFileService файлы комнаты. Порядок в мутациях жёсткий:
// проверки квот до загрузки блоба, блоб до транзакции метаданных,
// удаление блоба только после коммита
type RoomFileService struct {
	db    *database.Database
	perms permissions.Service
	store storage.Storage
}

func NewRoomFileService(db *database.Database, perms permissions.Service, store storage.Storage) *RoomFileService {
	return &RoomFileService{db: db, perms: perms, store: store}
}

func (s *RoomFileService) findRow(ctx context.Context, fileUUID uuid.UUID) (dto.Row, error) {
	rows, err := s.db.Builder(database.RoomFiles).
		Find().
		Where("room_files.uuid = ?", fileUUID).
		Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFound("room_file")
	}
	return rows[0], nil
}

func (s *RoomFileService) FindOne(ctx context.Context, fileUUID, actor uuid.UUID) (*dto.RoomFile, error) {
	row, err := s.findRow(ctx, fileUUID)
	if err != nil {
		return nil, err
	}

	file, err := dto.NewRoomFile(row, "room_file_")
	if err != nil {
		return nil, err
	}

	roomUUID, err := uuid.Parse(file.RoomUUID)
	if err != nil {
		return nil, err
	}
	member, err := s.perms.IsInRoom(ctx, roomUUID, actor, "")
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.NewRoomMemberRequired()
	}
	return file, nil
}

func (s *RoomFileService) FindAll(ctx context.Context, roomUUID, actor uuid.UUID, pg validators.Pagination) (*Page[*dto.RoomFile], error) {
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

	countRows, err := s.db.Builder(database.RoomFiles).
		Count().
		Where("room_files.room_uuid = ?", roomUUID).
		Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}
	total, err := countRows[0].Int64("total")
	if err != nil {
		return nil, err
	}

	q := s.db.Builder(database.RoomFiles).
		Find().
		Where("room_files.room_uuid = ?", roomUUID).
		OrderBy("room_files.created_at DESC")
	if pg.Requested() {
		q.Limit(*pg.Limit).Offset(pg.Offset())
	}
	rows, err := q.Execute(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}

	files := make([]*dto.RoomFile, 0, len(rows))
	for _, row := range rows {
		file, err := dto.NewRoomFile(row, "room_file_")
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return newPage(total, files, pg), nil
}

// Create загружает блоб и атомарно создаёт метаданные с учётом квоты.
// При падении транзакции после загрузки блоб удаляется компенсирующе
func (s *RoomFileService) Create(ctx context.Context, roomUUID, actor uuid.UUID, fileType string, upload Upload) (*dto.RoomFile, error) {
	if err := validators.RequireString(upload.Name, "file name"); err != nil {
		return nil, err
	}
	if err := validators.FileUpload(upload.Size, "file"); err != nil {
		return nil, err
	}
	switch fileType {
	case models.FileTypeRoomAvatar, models.FileTypeWebhookAvatar, models.FileTypeMessageUpload:
	default:
		return nil, apperrors.NewValidation("unknown file type %q", fileType)
	}

	member, err := s.perms.IsInRoom(ctx, roomUUID, actor, "")
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.NewRoomMemberRequired()
	}

	if err := s.checkQuotas(ctx, roomUUID, upload.Size); err != nil {
		return nil, err
	}

	fileUUID := uuid.New()
	key := blobKey(roomUUID, fileUUID, upload.Name)
	src, err := s.store.Upload(ctx, key, upload.Reader, upload.Size)
	if err != nil {
		return nil, err
	}

	file := models.RoomFile{
		UUID:      fileUUID,
		RoomUUID:  roomUUID,
		OwnerUUID: &actor,
		Src:       src,
		Size:      upload.Size,
		Type:      fileType,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&file).Error; err != nil {
			return err
		}
		return addBytesUsed(tx, roomUUID, upload.Size)
	})
	if err != nil {
		cleanupBlob(ctx, s.store, key)
		return nil, err
	}

	row, err := s.findRow(ctx, fileUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewRoomFile(row, "room_file_")
}

// Destroy удаляет метаданные в транзакции, блоб после коммита.
// Разрешено владельцу файла либо роли не ниже модератора
func (s *RoomFileService) Destroy(ctx context.Context, fileUUID, actor uuid.UUID) error {
	var file models.RoomFile
	if err := s.db.Gorm().WithContext(ctx).First(&file, "uuid = ?", fileUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NewNotFound("room_file")
		}
		return err
	}

	owner := file.OwnerUUID != nil && *file.OwnerUUID == actor
	if !owner {
		mod, err := s.perms.IsInRoom(ctx, file.RoomUUID, actor, models.RoleModerator)
		if err != nil {
			return err
		}
		if !mod {
			return apperrors.NewOwnershipOrMod()
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.RoomFile{}, "uuid = ?", fileUUID).Error; err != nil {
			return err
		}
		return addBytesUsed(tx, file.RoomUUID, -file.Size)
	})
	if err != nil {
		return err
	}

	cleanupSrc(ctx, s.store, file.Src)
	return nil
}

func (s *RoomFileService) checkQuotas(ctx context.Context, roomUUID uuid.UUID, size int64) error {
	exceeds, err := s.perms.FileExceedsSingleFileSize(ctx, roomUUID, size)
	if err != nil {
		return err
	}
	if exceeds {
		return apperrors.NewExceedsSingleFileSize()
	}

	exceeds, err = s.perms.FileExceedsTotalFilesLimit(ctx, roomUUID, size)
	if err != nil {
		return err
	}
	if exceeds {
		return apperrors.NewExceedsTotalFiles()
	}
	return nil
}

// addBytesUsed сдвигает счётчик занятых байт комнаты внутри транзакции
func addBytesUsed(tx *gorm.DB, roomUUID uuid.UUID, delta int64) error {
	return tx.Model(&models.Room{}).
		Where("uuid = ?", roomUUID).
		UpdateColumn("bytes_used", gorm.Expr("bytes_used + ?", delta)).Error
}
