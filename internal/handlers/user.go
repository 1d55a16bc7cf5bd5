package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parley-chat/parley/internal/services"
	"github.com/parley-chat/parley/internal/websocket"
)

type UserHandler struct {
	users *services.UserService
	hub   *websocket.Hub
}

func NewUserHandler(users *services.UserService, hub *websocket.Hub) *UserHandler {
	return &UserHandler{users: users, hub: hub}
}

// Me собственный профиль со статусом
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.Me(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe изменение профиля
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		Username  *string `json:"username"`
		AvatarSrc *string `json:"avatar_src"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateMe(c.Request.Context(), actorID(c), services.UpdateMeInput{
		Username:  req.Username,
		AvatarSrc: req.AvatarSrc,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateStatus смена состояния присутствия
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		State   string  `json:"state" binding:"required"`
		Message *string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := h.users.UpdateStatus(c.Request.Context(), actorID(c), req.State, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.hub != nil {
		h.hub.BroadcastUserStatus(actorID(c), status)
	}
	c.JSON(http.StatusOK, status)
}
