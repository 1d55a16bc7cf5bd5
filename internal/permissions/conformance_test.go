package permissions_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-chat/parley/internal/apperrors"
	"github.com/parley-chat/parley/internal/docstore"
	"github.com/parley-chat/parley/internal/models"
	"github.com/parley-chat/parley/internal/permissions"
	"github.com/parley-chat/parley/internal/testutil"
)

// Общая фикстура: комната с квотами max_users=3, max_channels=1,
// один файл до 1000 байт, всего 1000 байт при 900 занятых;
// три участника с разными ролями и один канал
type fixture struct {
	room     uuid.UUID
	channel  uuid.UUID
	admin    uuid.UUID
	mod      uuid.UUID
	member   uuid.UUID
	stranger uuid.UUID
}

func newFixture() fixture {
	return fixture{
		room:     uuid.New(),
		channel:  uuid.New(),
		admin:    uuid.New(),
		mod:      uuid.New(),
		member:   uuid.New(),
		stranger: uuid.New(),
	}
}

func seedRelational(t *testing.T, fx fixture) permissions.Service {
	t.Helper()
	db := testutil.OpenSQLite(t)

	room := models.Room{
		UUID:                   fx.room,
		Name:                   "fixture-room",
		MaxUsers:               3,
		MaxChannels:            1,
		SingleFileBytesAllowed: 1000,
		TotalFilesBytesAllowed: 1000,
		BytesUsed:              900,
	}
	require.NoError(t, db.Gorm().Create(&room).Error)

	for _, m := range []struct {
		user uuid.UUID
		role string
	}{
		{fx.admin, models.RoleAdmin},
		{fx.mod, models.RoleModerator},
		{fx.member, models.RoleMember},
	} {
		require.NoError(t, db.Gorm().Create(&models.RoomUser{
			RoomUUID: fx.room,
			UserUUID: m.user,
			Role:     m.role,
		}).Error)
	}

	require.NoError(t, db.Gorm().Create(&models.Channel{
		UUID:     fx.channel,
		RoomUUID: fx.room,
		Name:     "general",
		Type:     models.ChannelTypeText,
	}).Error)

	return permissions.NewRelational(db)
}

func seedDocument(t *testing.T, fx fixture) permissions.Service {
	t.Helper()
	ctx := context.Background()
	store := docstore.New(testutil.OpenRedis(t))

	require.NoError(t, store.Put(ctx, permissions.ColRooms, fx.room.String(), permissions.RoomDoc{
		UUID:                   fx.room.String(),
		MaxUsers:               3,
		MaxChannels:            1,
		SingleFileBytesAllowed: 1000,
		TotalFilesBytesAllowed: 1000,
		BytesUsed:              900,
	}))

	for _, m := range []struct {
		user uuid.UUID
		role string
	}{
		{fx.admin, models.RoleAdmin},
		{fx.mod, models.RoleModerator},
		{fx.member, models.RoleMember},
	} {
		require.NoError(t, store.Put(ctx, permissions.ColRoomUsers,
			permissions.RoomUserKey(fx.room, m.user),
			permissions.RoomUserDoc{RoomUUID: fx.room.String(), UserUUID: m.user.String(), Role: m.role}))
		require.NoError(t, store.AddMember(ctx, permissions.IdxRoomMembers+fx.room.String(), m.user.String()))
	}

	require.NoError(t, store.Put(ctx, permissions.ColChannels, fx.channel.String(), permissions.ChannelDoc{
		UUID:     fx.channel.String(),
		RoomUUID: fx.room.String(),
	}))
	require.NoError(t, store.AddMember(ctx, permissions.IdxRoomChannels+fx.room.String(), fx.channel.String()))

	return permissions.NewDocument(store)
}

// Один набор проверок гоняется против обоих бэкендов
func TestServiceConformance(t *testing.T) {
	backends := []struct {
		name string
		seed func(t *testing.T, fx fixture) permissions.Service
	}{
		{name: "relational", seed: seedRelational},
		{name: "document", seed: seedDocument},
	}

	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			fx := newFixture()
			svc := backend.seed(t, fx)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			t.Run("membership without role filter", func(t *testing.T) {
				for _, user := range []uuid.UUID{fx.admin, fx.mod, fx.member} {
					ok, err := svc.IsInRoom(ctx, fx.room, user, "")
					require.NoError(t, err)
					assert.True(t, ok)
				}

				ok, err := svc.IsInRoom(ctx, fx.room, fx.stranger, "")
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("hierarchical role sufficiency", func(t *testing.T) {
				cases := []struct {
					user    uuid.UUID
					minRole string
					want    bool
				}{
					{fx.admin, models.RoleAdmin, true},
					{fx.admin, models.RoleModerator, true},
					{fx.admin, models.RoleMember, true},
					{fx.mod, models.RoleAdmin, false},
					{fx.mod, models.RoleModerator, true},
					{fx.mod, models.RoleMember, true},
					{fx.member, models.RoleAdmin, false},
					{fx.member, models.RoleModerator, false},
					{fx.member, models.RoleMember, true},
					{fx.stranger, models.RoleMember, false},
				}
				for _, c := range cases {
					ok, err := svc.IsInRoom(ctx, fx.room, c.user, c.minRole)
					require.NoError(t, err)
					assert.Equal(t, c.want, ok, "user %s minRole %s", c.user, c.minRole)
				}
			})

			t.Run("unknown room is not found", func(t *testing.T) {
				_, err := svc.IsInRoom(ctx, uuid.New(), fx.admin, "")
				require.Error(t, err)
				assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
			})

			t.Run("membership by channel", func(t *testing.T) {
				ok, err := svc.IsInRoomByChannel(ctx, fx.channel, fx.member, "")
				require.NoError(t, err)
				assert.True(t, ok)

				ok, err = svc.IsInRoomByChannel(ctx, fx.channel, fx.stranger, "")
				require.NoError(t, err)
				assert.False(t, ok)

				_, err = svc.IsInRoomByChannel(ctx, uuid.New(), fx.member, "")
				require.Error(t, err)
				assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
			})

			t.Run("single file size boundary", func(t *testing.T) {
				exceeds, err := svc.FileExceedsSingleFileSize(ctx, fx.room, 1000)
				require.NoError(t, err)
				assert.False(t, exceeds, "bytes == limit must be allowed")

				exceeds, err = svc.FileExceedsSingleFileSize(ctx, fx.room, 1001)
				require.NoError(t, err)
				assert.True(t, exceeds)
			})

			t.Run("total files limit boundary", func(t *testing.T) {
				exceeds, err := svc.FileExceedsTotalFilesLimit(ctx, fx.room, 100)
				require.NoError(t, err)
				assert.False(t, exceeds, "used + bytes == limit must be allowed")

				exceeds, err = svc.FileExceedsTotalFilesLimit(ctx, fx.room, 150)
				require.NoError(t, err)
				assert.True(t, exceeds)
			})

			t.Run("user count quota", func(t *testing.T) {
				exceeds, err := svc.UserCountExceedsLimit(ctx, fx.room, 0)
				require.NoError(t, err)
				assert.False(t, exceeds)

				exceeds, err = svc.UserCountExceedsLimit(ctx, fx.room, 1)
				require.NoError(t, err)
				assert.True(t, exceeds)
			})

			t.Run("channel count quota", func(t *testing.T) {
				exceeds, err := svc.ChannelCountExceedsLimit(ctx, fx.room, 0)
				require.NoError(t, err)
				assert.False(t, exceeds)

				exceeds, err = svc.ChannelCountExceedsLimit(ctx, fx.room, 1)
				require.NoError(t, err)
				assert.True(t, exceeds)
			})
		})
	}
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, permissions.RoleAtLeast(models.RoleAdmin, models.RoleModerator))
	assert.True(t, permissions.RoleAtLeast(models.RoleModerator, models.RoleModerator))
	assert.False(t, permissions.RoleAtLeast(models.RoleMember, models.RoleModerator))
	assert.False(t, permissions.RoleAtLeast("Owner", models.RoleMember))
	assert.False(t, permissions.RoleAtLeast(models.RoleAdmin, "Owner"))
}
