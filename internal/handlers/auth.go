package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/parley-chat/parley/internal/apperrors"
	"github.com/parley-chat/parley/internal/services"
	"github.com/parley-chat/parley/pkg/auth"
)

type AuthHandler struct {
	users *services.UserService
	jwt   *auth.JWTManager
	redis *redis.Client
}

func NewAuthHandler(users *services.UserService, jwt *auth.JWTManager, redis *redis.Client) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt, redis: redis}
}

// Register регистрация нового пользователя
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login вход по логину или почте
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Login    string `json:"login" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := h.users.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Logout кладёт токен в черный список до его истечения
func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := auth.ExtractTokenFromHeader(c.Request)
	if err != nil {
		respondError(c, apperrors.NewUnauthorized())
		return
	}

	expiry, err := h.jwt.Expiry(token)
	if err != nil {
		respondError(c, apperrors.NewUnauthorized())
		return
	}

	ttl := time.Until(expiry)
	if ttl > 0 {
		if err := h.redis.Set(context.Background(), "blacklist:"+token, "1", ttl).Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// VerifyEmail подтверждение почты по токену из письма
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		respondError(c, apperrors.NewValidation("invalid token"))
		return
	}
	if err := h.users.VerifyEmail(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email verified"})
}

// RequestPasswordReset запрашивает письмо со ссылкой сброса
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.users.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "if the email exists, a reset link was sent"})
}

// ResetPassword меняет пароль по токену
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := uuid.Parse(req.Token)
	if err != nil {
		respondError(c, apperrors.NewValidation("invalid token"))
		return
	}
	if err := h.users.ResetPassword(c.Request.Context(), token, req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
