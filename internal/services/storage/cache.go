package storage

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "export_cache:"

// ExportKey identifies one rendering of an editor's raster.
type ExportKey struct {
	EditorID string
	Revision uint64
	Quality  float64
}

// GenerateCacheKey hashes the rendering parameters under a per-editor prefix
// so that all of an editor's entries can be dropped together.
func GenerateCacheKey(key ExportKey) string {
	hash := md5.New()
	hash.Write([]byte(fmt.Sprintf("rev_%d_q_%.4f", key.Revision, key.Quality)))
	return fmt.Sprintf("%s%x", editorPrefix(key.EditorID), hash.Sum(nil))
}

func editorPrefix(editorID string) string {
	return keyPrefix + editorID + ":"
}

// GetExport returns the cached bytes, or nil on a miss. Backend failures are
// logged and reported as misses.
func (s *StorageService) GetExport(ctx context.Context, key ExportKey) []byte {
	data, err := s.backend.Get(ctx, GenerateCacheKey(key))
	if err != nil {
		s.logger.Warn("Export cache read failed", zap.String("backend", s.backend.Name()), zap.Error(err))
		return nil
	}
	return data
}

// SetExport stores data. Failures are logged and otherwise ignored.
func (s *StorageService) SetExport(ctx context.Context, key ExportKey, data []byte) {
	if err := s.backend.Set(ctx, GenerateCacheKey(key), data); err != nil {
		s.logger.Warn("Export cache write failed", zap.String("backend", s.backend.Name()), zap.Error(err))
	}
}

// Invalidate drops every cached export of an editor.
func (s *StorageService) Invalidate(ctx context.Context, editorID string) error {
	if err := s.backend.DeletePrefix(ctx, editorPrefix(editorID)); err != nil {
		return fmt.Errorf("cache invalidate error: %w", err)
	}
	return nil
}

// MemoryBackend is an in-process LRU with per-entry expiry.
type MemoryBackend struct {
	lru *expirable.LRU[string, []byte]
}

func NewMemoryBackend(size int, ttl time.Duration) *MemoryBackend {
	if size <= 0 {
		size = 64
	}
	return &MemoryBackend{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := m.lru.Get(key)
	if !ok {
		return nil, nil
	}
	return data, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, data []byte) error {
	m.lru.Add(key, data)
	return nil
}

func (m *MemoryBackend) DeletePrefix(_ context.Context, prefix string) error {
	for _, key := range m.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			m.lru.Remove(key)
		}
	}
	return nil
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }

func (m *MemoryBackend) Close() error {
	m.lru.Purge()
	return nil
}

func (m *MemoryBackend) Len() int { return m.lru.Len() }

// RedisBackend stores entries with a TTL in Redis.
type RedisBackend struct {
	client        *redis.Client
	cacheDuration time.Duration
}

func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, cacheDuration: ttl}
}

func (r *RedisBackend) Name() string { return "redis" }

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("cache get error: %w", err)
	}
	return data, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, key, data, r.cacheDuration).Err()
}

func (r *RedisBackend) DeletePrefix(ctx context.Context, prefix string) error {
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
