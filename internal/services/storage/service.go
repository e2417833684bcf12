// Package storage caches rendered exports so repeated downloads of an
// unchanged raster skip the JPEG encoder.
package storage

import (
	"context"
	"time"

	"github.com/phambaophuc/image-editor/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backend is a byte cache with expiring entries. Get returns nil, nil on a
// miss.
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	DeletePrefix(ctx context.Context, prefix string) error
	Ping(ctx context.Context) error
	Close() error
}

type StorageService struct {
	backend Backend
	logger  *zap.Logger
}

// NewStorageService picks Redis when an address is configured and the
// in-memory LRU otherwise.
func NewStorageService(cfg *config.Config, logger *zap.Logger) (*StorageService, error) {
	if cfg.Redis.Addr == "" {
		return New(NewMemoryBackend(cfg.Storage.CacheSize, cfg.Storage.CacheDuration), logger), nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, using in-memory export cache",
			zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = redisClient.Close()
		return New(NewMemoryBackend(cfg.Storage.CacheSize, cfg.Storage.CacheDuration), logger), nil
	}
	return New(NewRedisBackend(redisClient, cfg.Storage.CacheDuration), logger), nil
}

func New(backend Backend, logger *zap.Logger) *StorageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StorageService{backend: backend, logger: logger}
}

func (s *StorageService) Backend() string { return s.backend.Name() }

func (s *StorageService) Close() error { return s.backend.Close() }
