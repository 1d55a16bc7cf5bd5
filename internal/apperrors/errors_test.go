package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parley-chat/parley/internal/apperrors"
)

func TestKindAndStatus(t *testing.T) {
	cases := []struct {
		err    error
		kind   apperrors.Kind
		status int
	}{
		{apperrors.NewValidation("bad %s", "input"), apperrors.KindValidation, http.StatusBadRequest},
		{apperrors.NewNotFound("room"), apperrors.KindNotFound, http.StatusNotFound},
		{apperrors.NewDuplicate("user", "email", "a@b.c"), apperrors.KindDuplicate, http.StatusConflict},
		{apperrors.NewRoomMemberRequired(), apperrors.KindRoomMemberRequired, http.StatusForbidden},
		{apperrors.NewAdminRequired(), apperrors.KindAdminRequired, http.StatusForbidden},
		{apperrors.NewOwnershipOrMod(), apperrors.KindOwnershipOrMod, http.StatusForbidden},
		{apperrors.NewExceedsTotalFiles(), apperrors.KindExceedsTotalFiles, http.StatusBadRequest},
		{apperrors.NewExceedsSingleFileSize(), apperrors.KindExceedsSingleFileSize, http.StatusBadRequest},
		{apperrors.NewExpired("token"), apperrors.KindExpired, http.StatusGone},
		{apperrors.NewUnauthorized(), apperrors.KindUnauthorized, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.kind, apperrors.KindOf(tc.err))
		assert.Equal(t, tc.status, apperrors.Status(tc.err))
	}
}

func TestErrorsIsByKind(t *testing.T) {
	err := apperrors.NewNotFound("room")
	assert.True(t, errors.Is(err, apperrors.NewNotFound("channel")))
	assert.False(t, errors.Is(err, apperrors.NewValidation("x")))

	// Обёртка не прячет kind
	wrapped := fmt.Errorf("lookup failed: %w", err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(wrapped))
	assert.Equal(t, http.StatusNotFound, apperrors.Status(wrapped))
}

func TestUnknownError(t *testing.T) {
	err := errors.New("plain")
	assert.Equal(t, apperrors.Kind(""), apperrors.KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, apperrors.Status(err))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "room not found", apperrors.NewNotFound("room").Error())
	assert.Equal(t, "bad input", apperrors.NewValidation("bad %s", "input").Error())
	assert.Contains(t, apperrors.NewDuplicate("user", "email", "a@b.c").Error(), "a@b.c")
}
