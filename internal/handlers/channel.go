package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parley-chat/parley/internal/services"
)

type ChannelHandler struct {
	channels *services.ChannelService
}

func NewChannelHandler(channels *services.ChannelService) *ChannelHandler {
	return &ChannelHandler{channels: channels}
}

// Create создает канал в комнате
func (h *ChannelHandler) Create(c *gin.Context) {
	roomUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Type        string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel, err := h.channels.Create(c.Request.Context(), roomUUID, actorID(c), services.CreateChannelInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, channel)
}

// FindAll каналы комнаты
func (h *ChannelHandler) FindAll(c *gin.Context) {
	roomUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	pg, err := pagination(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := h.channels.FindAll(c.Request.Context(), roomUUID, actorID(c), pg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// FindOne информация о канале
func (h *ChannelHandler) FindOne(c *gin.Context) {
	channelUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	channel, err := h.channels.FindOne(c.Request.Context(), channelUUID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, channel)
}

// Update изменение канала
func (h *ChannelHandler) Update(c *gin.Context) {
	channelUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel, err := h.channels.Update(c.Request.Context(), channelUUID, actorID(c), services.UpdateChannelInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, channel)
}

// Destroy удаляет канал с сообщениями и вебхуком
func (h *ChannelHandler) Destroy(c *gin.Context) {
	channelUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.channels.Destroy(c.Request.Context(), channelUUID, actorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "channel deleted"})
}
