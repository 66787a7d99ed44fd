package logocache

import (
	"context"
	"sync"
	"time"
)

// Cache stores fetched logo bytes by source URL. Implementations treat
// failures as misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte)
}

type entry struct {
	data      []byte
	expiresAt time.Time
	seq       uint64 // insertion order
}

// MemoryCache is a simple in-memory implementation of Cache
type MemoryCache struct {
	mu         sync.RWMutex
	store      map[string]entry
	ttl        time.Duration
	maxEntries int
	seq        uint64
	now        func() time.Time
}

// NewMemoryCache creates a cache keeping entries for ttl (0 means forever)
// and at most maxEntries of them (0 means no limit).
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	return &MemoryCache{
		store:      make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.store[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.store, key)
		m.mu.Unlock()
		return nil, false
	}
	return e.data, true
}

func (m *MemoryCache) Set(_ context.Context, key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxEntries > 0 && len(m.store) >= m.maxEntries {
		if _, exists := m.store[key]; !exists {
			m.evictOldest()
		}
	}

	var expiresAt time.Time
	if m.ttl > 0 {
		expiresAt = m.now().Add(m.ttl)
	}
	m.seq++
	m.store[key] = entry{data: data, expiresAt: expiresAt, seq: m.seq}
}

func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// evictOldest drops the least recently inserted entry. Callers hold mu.
func (m *MemoryCache) evictOldest() {
	var (
		oldestKey string
		oldestSeq uint64
		found     bool
	)
	for k, e := range m.store {
		if !found || e.seq < oldestSeq {
			oldestKey, oldestSeq, found = k, e.seq, true
		}
	}
	if found {
		delete(m.store, oldestKey)
	}
}
