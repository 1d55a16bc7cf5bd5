package main

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/parley-chat/parley/internal/handlers"
	"github.com/parley-chat/parley/internal/middleware"
	"github.com/parley-chat/parley/pkg/auth"
)

type RouteDeps struct {
	JWT      *auth.JWTManager
	Redis    *redis.Client
	Auth     *handlers.AuthHandler
	Users    *handlers.UserHandler
	Rooms    *handlers.RoomHandler
	Channels *handlers.ChannelHandler
	Messages *handlers.MessageHandler
	Files    *handlers.FileHandler
	Webhooks *handlers.WebhookHandler
	WS       *handlers.WebSocketHandler
}

func APIEndpoints(r *gin.Engine, d RouteDeps) {
	// Auth endpoints
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", d.Auth.Register)
		authGroup.POST("/login", d.Auth.Login)
		authGroup.GET("/verify-email/:token", d.Auth.VerifyEmail)
		authGroup.POST("/password-reset", d.Auth.RequestPasswordReset)
		authGroup.POST("/password-reset/confirm", d.Auth.ResetPassword)
	}

	// Входящие вебхуки аутентифицируются своим uuid
	r.POST("/webhooks/:id", d.Webhooks.Post)

	// API endpoints
	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(d.JWT, d.Redis))
	{
		api.POST("/auth/logout", d.Auth.Logout)

		api.GET("/me", d.Users.Me)
		api.PATCH("/me", d.Users.UpdateMe)
		api.PUT("/me/status", d.Users.UpdateStatus)

		api.POST("/rooms", d.Rooms.Create)
		api.GET("/rooms", d.Rooms.FindAll)
		api.POST("/rooms/join", d.Rooms.Join)
		api.GET("/rooms/:id", d.Rooms.FindOne)
		api.PATCH("/rooms/:id", d.Rooms.Update)
		api.DELETE("/rooms/:id", d.Rooms.Destroy)
		api.POST("/rooms/:id/leave", d.Rooms.Leave)
		api.GET("/rooms/:id/invite", d.Rooms.InviteLink)
		api.POST("/rooms/:id/invite/refresh", d.Rooms.RefreshInviteLink)
		api.GET("/rooms/:id/members", d.Rooms.Members)
		api.PUT("/rooms/:id/members/:userId/role", d.Rooms.UpdateMemberRole)
		api.DELETE("/rooms/:id/members/:userId", d.Rooms.Kick)

		api.POST("/rooms/:id/channels", d.Channels.Create)
		api.GET("/rooms/:id/channels", d.Channels.FindAll)
		api.GET("/channels/:id", d.Channels.FindOne)
		api.PATCH("/channels/:id", d.Channels.Update)
		api.DELETE("/channels/:id", d.Channels.Destroy)

		api.POST("/channels/:id/messages", d.Messages.Create)
		api.GET("/channels/:id/messages", d.Messages.FindAll)
		api.PATCH("/messages/:id", d.Messages.Update)
		api.DELETE("/messages/:id", d.Messages.Destroy)

		api.POST("/rooms/:id/files", d.Files.Create)
		api.GET("/rooms/:id/files", d.Files.FindAll)
		api.GET("/files/:id", d.Files.FindOne)
		api.DELETE("/files/:id", d.Files.Destroy)

		api.POST("/channels/:id/webhook", d.Webhooks.Create)
		api.GET("/channel-webhooks/:id", d.Webhooks.FindOne)
		api.DELETE("/channel-webhooks/:id", d.Webhooks.Destroy)
	}

	// WebSocket
	ws := r.Group("/ws")
	ws.Use(middleware.WSAuthMiddleware(d.JWT, d.Redis))
	{
		ws.GET("", d.WS.Connect)
	}
}
