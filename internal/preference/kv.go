// Package preference persists the user's display preferences. The only
// preference today is whether category screens include inherited attributes.
package preference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by KV.Get when the key has never been written.
var ErrNotFound = errors.New("preference not found")

// KV is a string key-value store. Backends are swappable so tests can run
// without Redis or PostgreSQL.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// HealthChecker is implemented by backends that depend on a remote service.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// --- MemoryKV ---

// MemoryKV keeps preferences in process memory. Values are lost on restart.
type MemoryKV struct {
	cache *cache.Cache
}

// NewMemoryKV creates an empty in-memory store. Entries never expire.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{cache: cache.New(cache.NoExpiration, 0)}
}

// Get returns the stored value or ErrNotFound.
func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	if v, found := m.cache.Get(key); found {
		return v.(string), nil
	}
	return "", ErrNotFound
}

// Set stores the value.
func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.cache.Set(key, value, cache.NoExpiration)
	return nil
}

// --- FileKV ---

// FileKV stores preferences as a flat YAML map in a single file. Writes go
// to a temporary file that replaces the original.
type FileKV struct {
	mu   sync.Mutex
	path string
}

// NewFileKV creates a store backed by path. The file is created on the first
// write.
func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

// Get returns the stored value or ErrNotFound. A file that cannot be parsed
// is reported as an error.
func (f *FileKV) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores the value, rewriting the file.
func (f *FileKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		// A corrupt file is replaced rather than blocking every write.
		values = map[string]string{}
	}
	values[key] = value

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".prefs-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}

// HealthCheck verifies the directory holding the file is reachable.
func (f *FileKV) HealthCheck(_ context.Context) error {
	_, err := os.Stat(filepath.Dir(f.path))
	return err
}

func (f *FileKV) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse preferences: %w", err)
	}
	return values, nil
}

// --- RedisKV ---

// RedisKV stores preferences in Redis under a key prefix.
type RedisKV struct {
	client redis.Cmdable
	prefix string
}

// NewRedisKV creates a Redis-backed store.
func NewRedisKV(client redis.Cmdable, prefix string) *RedisKV {
	return &RedisKV{client: client, prefix: prefix}
}

// Get returns the stored value or ErrNotFound.
func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return v, nil
}

// Set stores the value without expiry.
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// HealthCheck pings the server.
func (r *RedisKV) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
