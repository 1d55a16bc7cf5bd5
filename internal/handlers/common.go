package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/parley-chat/parley/internal/apperrors"
	"github.com/parley-chat/parley/internal/middleware"
	"github.com/parley-chat/parley/internal/validators"
)

// respondError переводит доменную ошибку в HTTP-ответ
func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.Status(err), gin.H{
		"error": err.Error(),
		"kind":  apperrors.KindOf(err),
	})
}

// actorID достаёт пользователя, положенного auth middleware
func actorID(c *gin.Context) uuid.UUID {
	return c.MustGet(middleware.UserIDKey).(uuid.UUID)
}

// paramUUID парсит uuid из path-параметра
func paramUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.NewValidation("invalid %s", name)
	}
	return id, nil
}

// pagination собирает параметры пагинации из query
func pagination(c *gin.Context) (validators.Pagination, error) {
	var pg validators.Pagination
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return pg, apperrors.NewValidation("limit must be an integer")
		}
		pg.Limit = &n
	}
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return pg, apperrors.NewValidation("page must be an integer")
		}
		pg.Page = &n
	}
	return pg, nil
}
