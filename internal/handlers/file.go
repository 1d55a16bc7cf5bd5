package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parley-chat/parley/internal/models"
	"github.com/parley-chat/parley/internal/services"
)

type FileHandler struct {
	files *services.RoomFileService
}

func NewFileHandler(files *services.RoomFileService) *FileHandler {
	return &FileHandler{files: files}
}

// Create загрузка файла в комнату
func (h *FileHandler) Create(c *gin.Context) {
	roomUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer f.Close()

	fileType := c.DefaultPostForm("type", models.FileTypeMessageUpload)
	file, err := h.files.Create(c.Request.Context(), roomUUID, actorID(c), fileType, services.Upload{
		Name:   fh.Filename,
		Size:   fh.Size,
		Reader: f,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

// FindAll файлы комнаты, новые первыми
func (h *FileHandler) FindAll(c *gin.Context) {
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
	page, err := h.files.FindAll(c.Request.Context(), roomUUID, actorID(c), pg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// FindOne метаданные файла
func (h *FileHandler) FindOne(c *gin.Context) {
	fileUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	file, err := h.files.FindOne(c.Request.Context(), fileUUID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

// Destroy удаление файла владельцем или модератором
func (h *FileHandler) Destroy(c *gin.Context) {
	fileUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.files.Destroy(c.Request.Context(), fileUUID, actorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "file deleted"})
}
