package cache

import (
	"context"
	"sync"
	"time"

	"github.com/happyscroll/verdict-service/internal/verdict"
)

// MemoryBackend is the single-instance fallback cache: a mutex-guarded map
// with lazy expiry. It is the only viable backend when CACHE_BACKEND_URL is
// unset, and is adequate for a single-replica deployment since single-flight
// already collapses concurrent misses within the process.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]verdict.Entry
}

// NewMemoryBackend constructs an empty in-process cache.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]verdict.Entry)}
}

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) Get(_ context.Context, videoID string) (*verdict.Verdict, bool) {
	b.mu.RLock()
	entry, ok := b.entries[videoID]
	b.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if entry.Expired(time.Now()) {
		b.mu.Lock()
		delete(b.entries, videoID)
		b.mu.Unlock()
		return nil, false
	}

	v := entry.Verdict
	return &v, true
}

func (b *MemoryBackend) Put(_ context.Context, videoID string, v verdict.Verdict, ttl time.Duration) {
	now := time.Now()
	b.mu.Lock()
	b.entries[videoID] = verdict.Entry{
		Verdict:   v,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	b.mu.Unlock()
}

func (b *MemoryBackend) Invalidate(_ context.Context, videoID string) {
	b.mu.Lock()
	delete(b.entries, videoID)
	b.mu.Unlock()
}

func (b *MemoryBackend) Clear(_ context.Context) int {
	b.mu.Lock()
	n := len(b.entries)
	b.entries = make(map[string]verdict.Entry)
	b.mu.Unlock()
	return n
}

// Size reports the current entry count including not-yet-swept expired
// entries; sweeping only happens lazily on Get.
func (b *MemoryBackend) Size(_ context.Context) int64 {
	b.mu.RLock()
	n := len(b.entries)
	b.mu.RUnlock()
	return int64(n)
}
