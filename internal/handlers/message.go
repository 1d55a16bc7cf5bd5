package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parley-chat/parley/internal/services"
)

type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Create отправка сообщения; multipart с file прикладывает вложение
func (h *MessageHandler) Create(c *gin.Context) {
	channelUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	in := services.CreateMessageInput{Body: c.PostForm("body")}
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
			return
		}
		defer f.Close()
		in.Upload = &services.Upload{Name: fh.Filename, Size: fh.Size, Reader: f}
	}

	msg, err := h.messages.Create(c.Request.Context(), channelUUID, actorID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// FindAll история канала, новые первыми
func (h *MessageHandler) FindAll(c *gin.Context) {
	channelUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	pg, err := pagination(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := h.messages.FindAll(c.Request.Context(), channelUUID, actorID(c), pg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Update редактирование своего сообщения
func (h *MessageHandler) Update(c *gin.Context) {
	messageUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messages.Update(c.Request.Context(), messageUUID, actorID(c), req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// Destroy удаление сообщения
func (h *MessageHandler) Destroy(c *gin.Context) {
	messageUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.messages.Destroy(c.Request.Context(), messageUUID, actorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}
