package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config все настройки процесса; собирается один раз на старте
// и передаётся по ссылке, глобального состояния нет
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	JWTSecret   string
	JWTLifetime time.Duration

	Storage StorageConfig
	SMTP    SMTPConfig

	// Квоты комнат по умолчанию
	RoomMaxUsers               int
	RoomMaxChannels            int
	RoomSingleFileBytesAllowed int64
	RoomTotalFilesBytesAllowed int64

	// Время жизни токенов сброса пароля и подтверждения почты
	TokenLifetime time.Duration
	// Интервал фоновой чистки просроченных токенов
	RetentionInterval time.Duration
}

type StorageConfig struct {
	Type    string // filesystem | s3 | memory
	Root    string // filesystem
	BaseURL string // filesystem
	Region  string // s3
	Bucket  string // s3
	KeyID   string // s3
	Secret  string // s3
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Load читает .env.local/.env и окружение
func Load() (*Config, error) {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	cfg := &Config{
		Port:        envOr("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTLifetime: envDuration("JWT_LIFETIME", 24*time.Hour),
		Storage: StorageConfig{
			Type:    envOr("STORAGE_TYPE", "filesystem"),
			Root:    envOr("STORAGE_ROOT", "./uploads"),
			BaseURL: envOr("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
			Region:  os.Getenv("S3_REGION"),
			Bucket:  os.Getenv("S3_BUCKET"),
			KeyID:   os.Getenv("S3_ACCESS_KEY_ID"),
			Secret:  os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envOr("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		RoomMaxUsers:               envInt("ROOM_MAX_USERS", 25),
		RoomMaxChannels:            envInt("ROOM_MAX_CHANNELS", 5),
		RoomSingleFileBytesAllowed: envInt64("ROOM_SINGLE_FILE_BYTES", 5*1024*1024),
		RoomTotalFilesBytesAllowed: envInt64("ROOM_TOTAL_FILES_BYTES", 25*1024*1024),
		TokenLifetime:              envDuration("TOKEN_LIFETIME", time.Hour),
		RetentionInterval:          envDuration("RETENTION_INTERVAL", 10*time.Minute),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("invalid %s, using default %d", key, fallback)
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		log.Printf("invalid %s, using default %d", key, fallback)
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid %s, using default %s", key, fallback)
	}
	return fallback
}
