package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
)

// KeyPrefix namespaces every key this tool writes, so a shared Redis can be
// cleared without touching other tenants
const KeyPrefix = "reliefscout:v1:"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a cache key for a namespace from the given parts. Parts are
// hashed so arbitrary text is safe as a file name or Redis key.
func Key(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return KeyPrefix + namespace + ":" + hex.EncodeToString(h.Sum(nil))
}

// New builds the cache described by cfg. A disabled cache is a no-op.
// With a Redis URL the layers are memory then Redis; otherwise memory then
// disk.
func New(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return Nop{}, nil
	}

	memory := NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)

	if strings.TrimSpace(cfg.RedisURL) != "" {
		redis, err := NewRedisCache(cfg.RedisURL, cfg.DiskTTL)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return NewLayeredCache(memory, redis), nil
	}

	return NewLayeredCache(memory, NewDiskCache(cfg.Dir, cfg.DiskTTL)), nil
}

// Nop is a cache that stores nothing
type Nop struct{}

func (Nop) Get(string) ([]byte, bool)               { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error                     { return nil }
func (Nop) Clear() error                            { return nil }
