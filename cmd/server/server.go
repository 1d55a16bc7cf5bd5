package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/parley-chat/parley/internal/config"
	"github.com/parley-chat/parley/internal/database"
	"github.com/parley-chat/parley/internal/handlers"
	"github.com/parley-chat/parley/internal/jobs"
	"github.com/parley-chat/parley/internal/mailer"
	"github.com/parley-chat/parley/internal/permissions"
	"github.com/parley-chat/parley/internal/services"
	"github.com/parley-chat/parley/internal/storage"
	"github.com/parley-chat/parley/internal/websocket"
	"github.com/parley-chat/parley/pkg/auth"
)

type Server struct {
	Router     *gin.Engine
	Config     *config.Config
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Hub        *websocket.Hub
	Retention  *jobs.Retention
}

func NewServer() *Server {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	store, err := storage.NewFromConfig(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("storage init failed: %v", err)
	}

	var mail mailer.Mailer
	if cfg.SMTP.Host != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTP)
	} else {
		mail = mailer.NewLogMailer()
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTLifetime)
	perms := permissions.NewRelational(db)
	hub := websocket.NewHub()

	defaults := services.RoomDefaults{
		MaxUsers:        cfg.RoomMaxUsers,
		MaxChannels:     cfg.RoomMaxChannels,
		SingleFileBytes: cfg.RoomSingleFileBytesAllowed,
		TotalFilesBytes: cfg.RoomTotalFilesBytesAllowed,
	}

	userSvc := services.NewUserService(db, mail, jwtMgr, cfg.TokenLifetime)
	roomSvc := services.NewRoomService(db, perms, store, defaults)
	channelSvc := services.NewChannelService(db, perms, store)
	messageSvc := services.NewMessageService(db, perms, store, hub)
	fileSvc := services.NewRoomFileService(db, perms, store)
	webhookSvc := services.NewWebhookService(db, perms, store, hub)

	authH := handlers.NewAuthHandler(userSvc, jwtMgr, rdb)
	userH := handlers.NewUserHandler(userSvc, hub)
	roomH := handlers.NewRoomHandler(roomSvc)
	channelH := handlers.NewChannelHandler(channelSvc)
	messageH := handlers.NewMessageHandler(messageSvc)
	fileH := handlers.NewFileHandler(fileSvc)
	webhookH := handlers.NewWebhookHandler(webhookSvc)
	wsH := handlers.NewWebSocketHandler(hub, perms)

	router := gin.Default()
	APIEndpoints(router, RouteDeps{
		JWT:      jwtMgr,
		Redis:    rdb,
		Auth:     authH,
		Users:    userH,
		Rooms:    roomH,
		Channels: channelH,
		Messages: messageH,
		Files:    fileH,
		Webhooks: webhookH,
		WS:       wsH,
	})

	return &Server{
		Router:     router,
		Config:     cfg,
		DB:         db,
		Redis:      rdb,
		JWTManager: jwtMgr,
		Hub:        hub,
		Retention:  jobs.NewRetention(db, cfg.RetentionInterval),
	}
}

func (s *Server) Run() {
	go s.Hub.Run()
	go s.Retention.Run(context.Background())

	log.Printf("Server starting on port %s", s.Config.Port)
	if err := s.Router.Run(":" + s.Config.Port); err != nil {
		log.Fatalf("Server run error: %v", err)
	}
}
