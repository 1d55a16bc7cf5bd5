package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parley-chat/parley/internal/services"
)

type WebhookHandler struct {
	webhooks *services.WebhookService
}

func NewWebhookHandler(webhooks *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

// Create вебхук канала; multipart с avatar задаёт аватар
func (h *WebhookHandler) Create(c *gin.Context) {
	channelUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	in := services.CreateWebhookInput{Name: c.PostForm("name")}
	if fh, err := c.FormFile("avatar"); err == nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read avatar"})
			return
		}
		defer f.Close()
		in.Avatar = &services.Upload{Name: fh.Filename, Size: fh.Size, Reader: f}
	}

	webhook, err := h.webhooks.Create(c.Request.Context(), channelUUID, actorID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, webhook)
}

// FindOne информация о вебхуке
func (h *WebhookHandler) FindOne(c *gin.Context) {
	webhookUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	webhook, err := h.webhooks.FindOne(c.Request.Context(), webhookUUID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, webhook)
}

// Post приём сообщения от внешней интеграции, без аутентификации актора
func (h *WebhookHandler) Post(c *gin.Context) {
	webhookUUID, err := paramUUID(c, "id")
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

	msg, err := h.webhooks.PostMessage(c.Request.Context(), webhookUUID, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// Destroy удаление вебхука
func (h *WebhookHandler) Destroy(c *gin.Context) {
	webhookUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.webhooks.Destroy(c.Request.Context(), webhookUUID, actorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "webhook deleted"})
}
