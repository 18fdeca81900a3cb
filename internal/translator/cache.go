package translator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Cache stores translations keyed by CacheKey. Get reports ok=false on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// CacheKey derives a stable key from the language pair and source text.
func CacheKey(src, tgt, text string) string {
	h := sha256.New()
	h.Write([]byte(src))
	h.Write([]byte{'|'})
	h.Write([]byte(tgt))
	h.Write([]byte{'|'})
	h.Write([]byte(text))
	return "tr:" + hex.EncodeToString(h.Sum(nil))
}

// MemoryCache is an unbounded in-process cache.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]string)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryCache) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
