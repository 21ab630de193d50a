// Package history maintains the persisted application state: a bounded
// generation history, the user settings record, and the system-prompt
// override. Values are stored as serialized JSON under fixed keys behind a
// small key-value port; malformed or missing data falls back to defaults.
package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
)

// KV is the persistence port. Get returns ok=false when the key has never
// been written. Any implementation with these semantics is acceptable.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// FileKV stores one file per key under a directory.
type FileKV struct {
	dir string
}

// NewFileKV creates the backing directory if needed.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("filekv: failed to create %s: %w", dir, err)
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileKV) Get(ctx context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("filekv: failed to read %s: %w", key, err)
	}
	return string(data), true, nil
}

func (f *FileKV) Set(ctx context.Context, key, value string) error {
	if err := os.WriteFile(f.path(key), []byte(value), 0644); err != nil {
		return fmt.Errorf("filekv: failed to write %s: %w", key, err)
	}
	return nil
}

// RedisKV stores keys in Redis. Values never expire; every mutation rewrites
// the whole serialized value, so concurrent writers race with last-write-wins.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV connects to Redis and verifies the connection.
func NewRedisKV(ctx context.Context, addr string) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("rediskv: failed to connect to %s: %w", addr, err)
	}
	return &RedisKV{client: client}, nil
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("rediskv: failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("rediskv: failed to write %s: %w", key, err)
	}
	return nil
}
