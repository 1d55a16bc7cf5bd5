package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roomsTable = Table{
	Name:     "rooms",
	Singular: "room",
	Columns:  []string{"uuid", "name", "bytes_used"},
}

var channelsTable = Table{
	Name:     "channels",
	Singular: "channel",
	Columns:  []string{"uuid", "room_uuid", "name"},
}

func TestBuildFind(t *testing.T) {
	query, args, err := New(roomsTable, Question).
		Find().
		Where("rooms.uuid = ?", "abc").
		OrderBy("rooms.created_at ASC").
		Limit(10).
		Offset(20).
		Build()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT rooms.uuid AS room_uuid, rooms.name AS room_name, rooms.bytes_used AS room_bytes_used"+
			" FROM rooms WHERE rooms.uuid = ? ORDER BY rooms.created_at ASC LIMIT ? OFFSET ?",
		query)
	assert.Equal(t, []any{"abc", 10, 20}, args)
}

func TestBuildFindWithInclude(t *testing.T) {
	query, _, err := New(channelsTable, Question).
		Find().
		Include(roomsTable, "rooms.uuid = channels.room_uuid").
		Where("channels.uuid = ?", "abc").
		Build()
	require.NoError(t, err)

	assert.Contains(t, query, "channels.uuid AS channel_uuid")
	assert.Contains(t, query, "rooms.uuid AS room_uuid")
	assert.Contains(t, query, "LEFT JOIN rooms ON rooms.uuid = channels.room_uuid")
}

func TestBuildCountAndSum(t *testing.T) {
	query, _, err := New(roomsTable, Question).Count().Where("rooms.uuid = ?", "abc").Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) AS total FROM rooms WHERE rooms.uuid = ?", query)

	query, _, err = New(roomsTable, Question).Sum("rooms.bytes_used").Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COALESCE(SUM(rooms.bytes_used), 0) AS total FROM rooms", query)
}

func TestBuildCreateSortsColumns(t *testing.T) {
	query, args, err := New(roomsTable, Question).
		Create(map[string]any{"name": "general", "uuid": "abc"}).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO rooms (name, uuid) VALUES (?, ?)", query)
	assert.Equal(t, []any{"general", "abc"}, args)
}

func TestBuildUpdateRequiresWhere(t *testing.T) {
	_, _, err := New(roomsTable, Question).
		Update(map[string]any{"name": "renamed"}).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without where")
}

func TestBuildDestroyRequiresWhere(t *testing.T) {
	_, _, err := New(roomsTable, Question).Destroy().Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without where")
}

func TestBuildUpdate(t *testing.T) {
	query, args, err := New(roomsTable, Question).
		Update(map[string]any{"name": "renamed"}).
		Where("uuid = ?", "abc").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE rooms SET name = ? WHERE uuid = ?", query)
	assert.Equal(t, []any{"renamed", "abc"}, args)
}

func TestRebindDollar(t *testing.T) {
	query, _, err := New(roomsTable, Dollar).
		Update(map[string]any{"name": "renamed"}).
		Where("uuid = ?", "abc").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE rooms SET name = $1 WHERE uuid = $2", query)
}

func TestBuildWithoutKindFails(t *testing.T) {
	_, _, err := New(roomsTable, Question).Build()
	require.Error(t, err)
}
