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

func TestChannelCreateRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	svc := services.NewChannelService(f.db, f.perms, f.store)
	ctx := context.Background()

	_, err := svc.Create(ctx, f.room, f.member, services.CreateChannelInput{Name: "x", Type: models.ChannelTypeText})
	assert.Equal(t, apperrors.KindAdminRequired, apperrors.KindOf(err))

	ch, err := svc.Create(ctx, f.room, f.admin, services.CreateChannelInput{Name: "voice", Type: models.ChannelTypeCall})
	require.NoError(t, err)
	assert.Equal(t, models.ChannelTypeCall, ch.Type)
}

func TestChannelCountQuota(t *testing.T) {
	f := newFixture(t)
	svc := services.NewChannelService(f.db, f.perms, f.store)
	ctx := context.Background()

	// Лимит 2, один канал уже есть
	_, err := svc.Create(ctx, f.room, f.admin, services.CreateChannelInput{Name: "second", Type: models.ChannelTypeText})
	require.NoError(t, err)

	_, err = svc.Create(ctx, f.room, f.admin, services.CreateChannelInput{Name: "third", Type: models.ChannelTypeText})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestChannelUnknownType(t *testing.T) {
	f := newFixture(t)
	svc := services.NewChannelService(f.db, f.perms, f.store)

	_, err := svc.Create(context.Background(), f.room, f.admin, services.CreateChannelInput{Name: "x", Type: "video"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestChannelFindAllByMembership(t *testing.T) {
	f := newFixture(t)
	svc := services.NewChannelService(f.db, f.perms, f.store)
	ctx := context.Background()

	page, err := svc.FindAll(ctx, f.room, f.member, validators.Pagination{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "main", page.Data[0].Name)

	_, err = svc.FindAll(ctx, f.room, f.stranger, validators.Pagination{})
	assert.Equal(t, apperrors.KindRoomMemberRequired, apperrors.KindOf(err))
}

func TestChannelDestroyCascadesMessagesAndUploads(t *testing.T) {
	f := newFixture(t)
	channels := services.NewChannelService(f.db, f.perms, f.store)
	messages := services.NewMessageService(f.db, f.perms, f.store, nil)
	ctx := context.Background()

	att := upload("a.png", 100)
	_, err := messages.Create(ctx, f.channel, f.member, services.CreateMessageInput{Body: "hi", Upload: &att})
	require.NoError(t, err)
	require.Equal(t, int64(100), f.bytesUsed(t))

	require.NoError(t, channels.Destroy(ctx, f.channel, f.admin))

	assert.Equal(t, int64(0), f.bytesUsed(t))
	assert.Equal(t, 0, f.store.Len())

	var msgs int64
	require.NoError(t, f.db.Gorm().Model(&models.ChannelMessage{}).Where("channel_uuid = ?", f.channel).Count(&msgs).Error)
	assert.Zero(t, msgs)

	_, err = channels.FindOne(ctx, f.channel, f.admin)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestChannelDestroyReapsWebhookAvatar(t *testing.T) {
	f := newFixture(t)
	channels := services.NewChannelService(f.db, f.perms, f.store)
	webhooks := services.NewWebhookService(f.db, f.perms, f.store, nil)
	ctx := context.Background()

	av := upload("hook.png", 100)
	_, err := webhooks.Create(ctx, f.channel, f.admin, services.CreateWebhookInput{Name: "ci", Avatar: &av})
	require.NoError(t, err)
	require.Equal(t, int64(100), f.bytesUsed(t))
	require.Equal(t, 1, f.store.Len())

	require.NoError(t, channels.Destroy(ctx, f.channel, f.admin))

	// Аватар вебхука ушёл вместе с каналом: метаданные, квота, блоб
	assert.Equal(t, int64(0), f.bytesUsed(t))
	assert.Equal(t, 0, f.store.Len())

	var leftovers int64
	require.NoError(t, f.db.Gorm().Model(&models.RoomFile{}).Where("room_uuid = ?", f.room).Count(&leftovers).Error)
	assert.Zero(t, leftovers)
}
