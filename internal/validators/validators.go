package validators

import (
	"strings"

	"github.com/google/uuid"
	"github.com/parley-chat/parley/internal/apperrors"
	"github.com/parley-chat/parley/internal/models"
)

// Pagination входные параметры постраничной выборки.
// page требует limit; оба должны быть положительными
type Pagination struct {
	Page  *int
	Limit *int
}

// Validate проверяет контракт пагинации
func (p Pagination) Validate() error {
	if p.Page != nil && p.Limit == nil {
		return apperrors.NewValidation("page requires limit")
	}
	if p.Limit != nil && *p.Limit < 1 {
		return apperrors.NewValidation("limit must be a positive integer")
	}
	if p.Page != nil && *p.Page < 1 {
		return apperrors.NewValidation("page must be a positive integer")
	}
	return nil
}

// Offset возвращает смещение для выборки
func (p Pagination) Offset() int {
	if p.Page == nil || p.Limit == nil {
		return 0
	}
	return (*p.Page - 1) * *p.Limit
}

// Requested сообщает, запрошена ли пагинация
func (p Pagination) Requested() bool {
	return p.Limit != nil
}

func RequireUUID(id uuid.UUID, field string) error {
	if id == uuid.Nil {
		return apperrors.NewValidation("%s is required", field)
	}
	return nil
}

func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.NewValidation("%s is required", field)
	}
	return nil
}

// RoomRole проверяет, что роль из фиксированного набора
func RoomRole(role string) error {
	switch role {
	case models.RoleAdmin, models.RoleModerator, models.RoleMember:
		return nil
	}
	return apperrors.NewValidation("unknown room role %q", role)
}

// ChannelType проверяет тип канала
func ChannelType(t string) error {
	switch t {
	case models.ChannelTypeText, models.ChannelTypeCall:
		return nil
	}
	return apperrors.NewValidation("unknown channel type %q", t)
}

// UserStatusState проверяет состояние пользователя
func UserStatusState(state string) error {
	switch state {
	case models.StatusOnline, models.StatusAway, models.StatusDoNotDisturb, models.StatusOffline:
		return nil
	}
	return apperrors.NewValidation("unknown user status state %q", state)
}

// FileUpload проверяет входной файл
func FileUpload(size int64, field string) error {
	if size <= 0 {
		return apperrors.NewValidation("%s must not be empty", field)
	}
	return nil
}
