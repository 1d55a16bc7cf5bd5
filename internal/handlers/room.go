package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parley-chat/parley/internal/services"
)

type RoomHandler struct {
	rooms *services.RoomService
}

func NewRoomHandler(rooms *services.RoomService) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// Create создает новую комнату
func (h *RoomHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Category    string `json:"category"`
		JoinMessage string `json:"join_message"`
		RulesText   string `json:"rules_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.rooms.Create(c.Request.Context(), actorID(c), services.CreateRoomInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		JoinMessage: req.JoinMessage,
		RulesText:   req.RulesText,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// FindAll список комнат пользователя
func (h *RoomHandler) FindAll(c *gin.Context) {
	pg, err := pagination(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := h.rooms.FindAll(c.Request.Context(), actorID(c), pg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// FindOne информация о комнате
func (h *RoomHandler) FindOne(c *gin.Context) {
	roomUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	room, err := h.rooms.FindOne(c.Request.Context(), roomUUID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// Update изменение полей комнаты; multipart с avatar меняет аватар
func (h *RoomHandler) Update(c *gin.Context) {
	roomUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var in services.UpdateRoomInput
	if v, ok := c.GetPostForm("name"); ok {
		in.Name = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		in.Description = &v
	}
	if v, ok := c.GetPostForm("category"); ok {
		in.Category = &v
	}
	if v, ok := c.GetPostForm("join_message"); ok {
		in.JoinMessage = &v
	}
	if v, ok := c.GetPostForm("rules_text"); ok {
		in.RulesText = &v
	}

	if fh, err := c.FormFile("avatar"); err == nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read avatar"})
			return
		}
		defer f.Close()
		in.Avatar = &services.Upload{Name: fh.Filename, Size: fh.Size, Reader: f}
	}

	room, err := h.rooms.Update(c.Request.Context(), roomUUID, actorID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// Destroy удаляет комнату со всем содержимым
func (h *RoomHandler) Destroy(c *gin.Context) {
	roomUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.rooms.Destroy(c.Request.Context(), roomUUID, actorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "room deleted"})
}

// InviteLink действующая инвайт-ссылка комнаты
func (h *RoomHandler) InviteLink(c *gin.Context) {
	roomUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	link, err := h.rooms.InviteLink(c.Request.Context(), roomUUID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// RefreshInviteLink перевыпускает токен
func (h *RoomHandler) RefreshInviteLink(c *gin.Context) {
	roomUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	link, err := h.rooms.RefreshInviteLink(c.Request.Context(), roomUUID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// Join вступление по инвайт-токену
func (h *RoomHandler) Join(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	room, err := h.rooms.JoinByInvite(c.Request.Context(), req.Token, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// Leave выход из комнаты
func (h *RoomHandler) Leave(c *gin.Context) {
	roomUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.rooms.Leave(c.Request.Context(), roomUUID, actorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left room"})
}

// Members участники комнаты
func (h *RoomHandler) Members(c *gin.Context) {
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
	page, err := h.rooms.Members(c.Request.Context(), roomUUID, actorID(c), pg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// UpdateMemberRole смена роли участника
func (h *RoomHandler) UpdateMemberRole(c *gin.Context) {
	roomUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	target, err := paramUUID(c, "userId")
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.rooms.UpdateMemberRole(c.Request.Context(), roomUUID, target, req.Role, actorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "role updated"})
}

// Kick исключение участника
func (h *RoomHandler) Kick(c *gin.Context) {
	roomUUID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	target, err := paramUUID(c, "userId")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.rooms.Kick(c.Request.Context(), roomUUID, target, actorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}
