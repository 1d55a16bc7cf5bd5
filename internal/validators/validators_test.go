package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-chat/parley/internal/apperrors"
)

func intPtr(v int) *int { return &v }

func TestPaginationValidate(t *testing.T) {
	tests := []struct {
		name    string
		pg      Pagination
		wantErr bool
	}{
		{name: "empty is valid", pg: Pagination{}},
		{name: "limit only is valid", pg: Pagination{Limit: intPtr(10)}},
		{name: "page and limit is valid", pg: Pagination{Page: intPtr(2), Limit: intPtr(10)}},
		{name: "page without limit", pg: Pagination{Page: intPtr(2)}, wantErr: true},
		{name: "zero limit", pg: Pagination{Limit: intPtr(0)}, wantErr: true},
		{name: "negative page", pg: Pagination{Page: intPtr(-1), Limit: intPtr(10)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	assert.Equal(t, 0, Pagination{}.Offset())
	assert.Equal(t, 0, Pagination{Page: intPtr(1), Limit: intPtr(10)}.Offset())
	assert.Equal(t, 20, Pagination{Page: intPtr(3), Limit: intPtr(10)}.Offset())
}

func TestRoomRole(t *testing.T) {
	require.NoError(t, RoomRole("Admin"))
	require.NoError(t, RoomRole("Moderator"))
	require.NoError(t, RoomRole("Member"))
	require.Error(t, RoomRole("Owner"))
	require.Error(t, RoomRole("admin"))
}

func TestChannelType(t *testing.T) {
	require.NoError(t, ChannelType("text"))
	require.NoError(t, ChannelType("call"))
	require.Error(t, ChannelType("voice"))
}

func TestFileUpload(t *testing.T) {
	require.NoError(t, FileUpload(1, "file"))
	err := FileUpload(0, "file")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
