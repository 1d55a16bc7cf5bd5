package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-chat/parley/internal/apperrors"
	"github.com/parley-chat/parley/internal/models"
	"github.com/parley-chat/parley/internal/services"
	"github.com/parley-chat/parley/internal/validators"
)

func TestRoomFileCreateWithinQuota(t *testing.T) {
	f := newFixture(t)
	svc := services.NewRoomFileService(f.db, f.perms, f.store)
	ctx := context.Background()

	first, err := svc.Create(ctx, f.room, f.member, models.FileTypeMessageUpload, upload("a.png", 900))
	require.NoError(t, err)
	assert.Equal(t, int64(900), first.Size)
	assert.Equal(t, int64(900), f.bytesUsed(t))

	// Ровно до лимита проходит
	second, err := svc.Create(ctx, f.room, f.member, models.FileTypeMessageUpload, upload("b.png", 100))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), f.bytesUsed(t))
	assert.Equal(t, 2, f.store.Len())

	_ = second
}

func TestRoomFileCreateExceedsTotalLimit(t *testing.T) {
	f := newFixture(t)
	svc := services.NewRoomFileService(f.db, f.perms, f.store)
	ctx := context.Background()

	_, err := svc.Create(ctx, f.room, f.member, models.FileTypeMessageUpload, upload("a.png", 900))
	require.NoError(t, err)

	_, err = svc.Create(ctx, f.room, f.member, models.FileTypeMessageUpload, upload("b.png", 150))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindExceedsTotalFiles, apperrors.KindOf(err))

	// Отклонённая загрузка не трогает ни счётчик, ни хранилище
	assert.Equal(t, int64(900), f.bytesUsed(t))
	assert.Equal(t, 1, f.store.Len())
}

func TestRoomFileCreateExceedsSingleFileSize(t *testing.T) {
	f := newFixture(t)
	svc := services.NewRoomFileService(f.db, f.perms, f.store)

	_, err := svc.Create(context.Background(), f.room, f.member, models.FileTypeMessageUpload, upload("big.bin", 1001))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindExceedsSingleFileSize, apperrors.KindOf(err))
	assert.Equal(t, 0, f.store.Len())
}

func TestRoomFileCreateRequiresMembership(t *testing.T) {
	f := newFixture(t)
	svc := services.NewRoomFileService(f.db, f.perms, f.store)

	_, err := svc.Create(context.Background(), f.room, f.stranger, models.FileTypeMessageUpload, upload("a.png", 10))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindRoomMemberRequired, apperrors.KindOf(err))
	assert.Equal(t, 0, f.store.Len())
}

func TestRoomFileDestroyReleasesQuota(t *testing.T) {
	f := newFixture(t)
	svc := services.NewRoomFileService(f.db, f.perms, f.store)
	ctx := context.Background()

	file, err := svc.Create(ctx, f.room, f.member, models.FileTypeMessageUpload, upload("a.png", 400))
	require.NoError(t, err)

	fileUUID := mustUUID(t, file.UUID)
	require.NoError(t, svc.Destroy(ctx, fileUUID, f.member))

	assert.Equal(t, int64(0), f.bytesUsed(t))
	assert.Equal(t, 0, f.store.Len())

	_, err = svc.FindOne(ctx, fileUUID, f.member)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	// Квота снова доступна
	_, err = svc.Create(ctx, f.room, f.member, models.FileTypeMessageUpload, upload("b.png", 1000))
	require.NoError(t, err)
}

func TestRoomFileDestroyPermissions(t *testing.T) {
	f := newFixture(t)
	svc := services.NewRoomFileService(f.db, f.perms, f.store)
	ctx := context.Background()

	file, err := svc.Create(ctx, f.room, f.member, models.FileTypeMessageUpload, upload("a.png", 100))
	require.NoError(t, err)
	fileUUID := mustUUID(t, file.UUID)

	// Другой рядовой участник не владелец и не модератор
	other, err := svc.Create(ctx, f.room, f.mod, models.FileTypeMessageUpload, upload("b.png", 100))
	require.NoError(t, err)
	err = svc.Destroy(ctx, mustUUID(t, other.UUID), f.member)
	assert.Equal(t, apperrors.KindOwnershipOrMod, apperrors.KindOf(err))

	// Модератор может удалить чужой файл
	require.NoError(t, svc.Destroy(ctx, fileUUID, f.mod))
}

func TestRoomFileFindAllPagination(t *testing.T) {
	f := newFixture(t)
	svc := services.NewRoomFileService(f.db, f.perms, f.store)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, f.room, f.member, models.FileTypeMessageUpload, upload("f.png", 10))
		require.NoError(t, err)
	}

	page, err := svc.FindAll(ctx, f.room, f.member, validators.Pagination{Page: intPtr(2), Limit: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Len(t, page.Data, 2)
	require.NotNil(t, page.Pages)
	assert.Equal(t, 3, *page.Pages)
	assert.Equal(t, 2, *page.Page)

	// page без limit нарушает контракт
	_, err = svc.FindAll(ctx, f.room, f.member, validators.Pagination{Page: intPtr(1)})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	// Без пагинации служебных полей нет
	all, err := svc.FindAll(ctx, f.room, f.member, validators.Pagination{})
	require.NoError(t, err)
	assert.Nil(t, all.Page)
	assert.Nil(t, all.Limit)
	assert.Nil(t, all.Pages)
	assert.Len(t, all.Data, 5)
}
