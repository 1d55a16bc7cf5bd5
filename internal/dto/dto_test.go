package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roomRow(prefix string) Row {
	now := time.Now()
	return Row{
		prefix + "uuid":                      "6f1c2a9e-0000-0000-0000-000000000001",
		prefix + "name":                      "general",
		prefix + "description":               "talk",
		prefix + "category":                  "community",
		prefix + "max_users":                 int64(25),
		prefix + "max_channels":              int64(5),
		prefix + "single_file_bytes_allowed": int64(5242880),
		prefix + "total_files_bytes_allowed": int64(26214400),
		prefix + "bytes_used":                int64(1048576),
		prefix + "created_at":                now,
		prefix + "updated_at":                now,
	}
}

func TestNewRoom(t *testing.T) {
	room, err := NewRoom(roomRow("room_"), "room_")
	require.NoError(t, err)

	assert.Equal(t, "general", room.Name)
	assert.Equal(t, int64(1048576), room.BytesUsed)
	assert.Equal(t, 1.0, room.UsedMB)
	assert.Equal(t, 5.0, room.SingleFileMB)
	assert.Equal(t, 25.0, room.TotalFilesMB)
	assert.Nil(t, room.AvatarSrc)
}

func TestNewRoomMissingRequiredField(t *testing.T) {
	row := roomRow("room_")
	delete(row, "room_name")

	_, err := NewRoom(row, "room_")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "room_name")
}

func TestNewRoomWithoutPrefix(t *testing.T) {
	room, err := NewRoom(roomRow(""), "")
	require.NoError(t, err)
	assert.Equal(t, "general", room.Name)
}

func TestNewRoomFileDerivesMB(t *testing.T) {
	now := time.Now()
	file, err := NewRoomFile(Row{
		"room_file_uuid":       "6f1c2a9e-0000-0000-0000-000000000002",
		"room_file_room_uuid":  "6f1c2a9e-0000-0000-0000-000000000001",
		"room_file_src":        "http://files.local/abc",
		"room_file_size":       int64(2621440),
		"room_file_type":       "message_upload",
		"room_file_created_at": now,
	}, "room_file_")
	require.NoError(t, err)
	assert.Equal(t, 2.5, file.SizeMB)
}

func TestNewChannelMessageNestedComposition(t *testing.T) {
	now := time.Now()
	row := Row{
		"channel_message_uuid":         "6f1c2a9e-0000-0000-0000-000000000003",
		"channel_message_channel_uuid": "6f1c2a9e-0000-0000-0000-000000000004",
		"channel_message_user_uuid":    "6f1c2a9e-0000-0000-0000-000000000005",
		"channel_message_body":         "hello",
		"channel_message_type":         "user",
		"channel_message_created_at":   now,

		"user_uuid":     "6f1c2a9e-0000-0000-0000-000000000005",
		"user_username": "alice",

		"room_file_uuid":       "6f1c2a9e-0000-0000-0000-000000000006",
		"room_file_room_uuid":  "6f1c2a9e-0000-0000-0000-000000000001",
		"room_file_src":        "http://files.local/upload",
		"room_file_size":       int64(1024),
		"room_file_type":       "message_upload",
		"room_file_created_at": now,
	}

	msg, err := NewChannelMessage(row, "channel_message_")
	require.NoError(t, err)

	require.NotNil(t, msg.User)
	assert.Equal(t, "alice", msg.User.Username)
	require.NotNil(t, msg.Upload)
	assert.Equal(t, int64(1024), msg.Upload.Size)
	assert.Nil(t, msg.Webhook)
}

func TestNewChannelMessageNestedUserMissingFieldFails(t *testing.T) {
	now := time.Now()
	row := Row{
		"channel_message_uuid":         "6f1c2a9e-0000-0000-0000-000000000003",
		"channel_message_channel_uuid": "6f1c2a9e-0000-0000-0000-000000000004",
		"channel_message_body":         "hello",
		"channel_message_type":         "user",
		"channel_message_created_at":   now,
		"user_uuid":                    "6f1c2a9e-0000-0000-0000-000000000005",
	}

	_, err := NewChannelMessage(row, "channel_message_")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_username")
}

func TestNewUserStatusHoursDerivation(t *testing.T) {
	now := time.Now()
	status, err := NewUserStatus(Row{
		"uuid":                 "6f1c2a9e-0000-0000-0000-000000000007",
		"user_uuid":            "6f1c2a9e-0000-0000-0000-000000000005",
		"state":                "online",
		"last_seen_at":         now,
		"total_online_seconds": int64(5400),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 1.5, status.TotalOnlineHours)
}

func TestBytesToMB(t *testing.T) {
	assert.Equal(t, 0.0, BytesToMB(0))
	assert.Equal(t, 1.0, BytesToMB(1048576))
	assert.Equal(t, 0.5, BytesToMB(524288))
}
