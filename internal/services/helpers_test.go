package services_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/parley-chat/parley/internal/database"
	"github.com/parley-chat/parley/internal/models"
	"github.com/parley-chat/parley/internal/permissions"
	"github.com/parley-chat/parley/internal/services"
	"github.com/parley-chat/parley/internal/storage"
	"github.com/parley-chat/parley/internal/testutil"
)

// fixture общая обвязка сервисных тестов: база, хранилище и комната
// с админом, модератором, участником и посторонним
type fixture struct {
	db    *database.Database
	perms permissions.Service
	store *storage.MemoryStorage

	room     uuid.UUID
	channel  uuid.UUID
	admin    uuid.UUID
	mod      uuid.UUID
	member   uuid.UUID
	stranger uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		db:       testutil.OpenSQLite(t),
		store:    storage.NewMemoryStorage(),
		room:     uuid.New(),
		channel:  uuid.New(),
		admin:    uuid.New(),
		mod:      uuid.New(),
		member:   uuid.New(),
		stranger: uuid.New(),
	}
	f.perms = permissions.NewRelational(f.db)

	g := f.db.Gorm()
	users := map[uuid.UUID]string{
		f.admin:    "admin",
		f.mod:      "mod",
		f.member:   "member",
		f.stranger: "stranger",
	}
	for id, name := range users {
		if err := g.Create(&models.User{
			UUID:         id,
			Username:     name,
			Email:        name + "@example.com",
			PasswordHash: "x",
		}).Error; err != nil {
			t.Fatalf("seed user %s: %v", name, err)
		}
		if err := g.Create(&models.UserStatus{UserUUID: id, State: models.StatusOffline}).Error; err != nil {
			t.Fatalf("seed status %s: %v", name, err)
		}
	}

	if err := g.Create(&models.Room{
		UUID:                   f.room,
		Name:                   "general",
		MaxUsers:               5,
		MaxChannels:            2,
		SingleFileBytesAllowed: 1000,
		TotalFilesBytesAllowed: 1000,
		BytesUsed:              0,
	}).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}

	memberships := map[uuid.UUID]string{
		f.admin:  models.RoleAdmin,
		f.mod:    models.RoleModerator,
		f.member: models.RoleMember,
	}
	for id, role := range memberships {
		if err := g.Create(&models.RoomUser{RoomUUID: f.room, UserUUID: id, Role: role}).Error; err != nil {
			t.Fatalf("seed membership: %v", err)
		}
	}

	if err := g.Create(&models.Channel{
		UUID:     f.channel,
		RoomUUID: f.room,
		Name:     "main",
		Type:     models.ChannelTypeText,
	}).Error; err != nil {
		t.Fatalf("seed channel: %v", err)
	}

	return f
}

func (f *fixture) bytesUsed(t *testing.T) int64 {
	t.Helper()
	var room models.Room
	if err := f.db.Gorm().First(&room, "uuid = ?", f.room).Error; err != nil {
		t.Fatalf("read room: %v", err)
	}
	return room.BytesUsed
}

func upload(name string, size int) services.Upload {
	return services.Upload{
		Name:   name,
		Size:   int64(size),
		Reader: strings.NewReader(strings.Repeat("a", size)),
	}
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("bad uuid %q: %v", s, err)
	}
	return id
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// recordingNotifier собирает разосланные события
type recordingNotifier struct {
	mu     sync.Mutex
	events []notified
}

type notified struct {
	Channel uuid.UUID
	Event   string
	Payload any
}

func (n *recordingNotifier) NotifyChannel(channelUUID uuid.UUID, event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notified{Channel: channelUUID, Event: event, Payload: payload})
}
