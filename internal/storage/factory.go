package storage

import (
	"context"
	"fmt"

	"github.com/parley-chat/parley/internal/config"
)

// NewFromConfig выбирает реализацию хранилища по конфигурации
func NewFromConfig(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStorage(), nil
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem storage requires STORAGE_ROOT to be set")
		}
		return NewFileSystemStorage(cfg.Root, cfg.BaseURL)
	case "s3":
		if cfg.Bucket == "" || cfg.Region == "" {
			return nil, fmt.Errorf("s3 storage requires S3_BUCKET and S3_REGION to be set")
		}
		return NewS3Storage(ctx, S3Config{
			Region:          cfg.Region,
			Bucket:          cfg.Bucket,
			AccessKeyID:     cfg.KeyID,
			SecretAccessKey: cfg.Secret,
		})
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
