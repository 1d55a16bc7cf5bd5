package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind машинно-проверяемый тип ошибки
type Kind string

const (
	KindValidation            Kind = "validation_error"
	KindNotFound              Kind = "entity_not_found"
	KindDuplicate             Kind = "duplicate_entry"
	KindRoomMemberRequired    Kind = "room_member_required"
	KindAdminRequired         Kind = "admin_permission_required"
	KindOwnershipOrMod        Kind = "ownership_or_least_mod_required"
	KindExceedsTotalFiles     Kind = "exceeds_room_total_files_limit"
	KindExceedsSingleFileSize Kind = "exceeds_single_file_size"
	KindExpired               Kind = "entity_expired"
	KindUnauthorized          Kind = "unauthorized"
)

// Error доменная ошибка с kind и HTTP статусом
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is позволяет сравнивать ошибки по kind через errors.Is
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func NewValidation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func NewNotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: fmt.Sprintf("%s not found", entity)}
}

func NewDuplicate(entity, field string, value any) *Error {
	return &Error{
		Kind:    KindDuplicate,
		Status:  http.StatusConflict,
		Message: fmt.Sprintf("%s with %s %v already exists", entity, field, value),
	}
}

func NewRoomMemberRequired() *Error {
	return &Error{Kind: KindRoomMemberRequired, Status: http.StatusForbidden, Message: "room membership required"}
}

func NewAdminRequired() *Error {
	return &Error{Kind: KindAdminRequired, Status: http.StatusForbidden, Message: "room admin permission required"}
}

func NewOwnershipOrMod() *Error {
	return &Error{
		Kind:    KindOwnershipOrMod,
		Status:  http.StatusForbidden,
		Message: "ownership or at least moderator role required",
	}
}

func NewExceedsTotalFiles() *Error {
	return &Error{
		Kind:    KindExceedsTotalFiles,
		Status:  http.StatusBadRequest,
		Message: "upload would exceed the room total file storage limit",
	}
}

func NewExceedsSingleFileSize() *Error {
	return &Error{
		Kind:    KindExceedsSingleFileSize,
		Status:  http.StatusBadRequest,
		Message: "file exceeds the single file size limit for the room",
	}
}

func NewUnauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: "invalid credentials"}
}

func NewExpired(entity string) *Error {
	return &Error{Kind: KindExpired, Status: http.StatusGone, Message: fmt.Sprintf("%s has expired", entity)}
}

// KindOf возвращает kind ошибки или пустую строку
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Status возвращает HTTP статус для ошибки
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
