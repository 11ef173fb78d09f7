package cache

import (
	"context"
	"sync"
	"time"

	"romportal/internal/certificate/models"
)

type entry struct {
	result    *models.VerificationResult
	expiresAt time.Time
}

// MemoryCache is a process-local verification cache for single-instance
// deployments. Expired entries are dropped on read.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, code string) (*models.VerificationResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[code]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, code)
		return nil, false, nil
	}
	return cloneResult(e.result), true, nil
}

func (c *MemoryCache) Set(_ context.Context, code string, result *models.VerificationResult) error {
	if result == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[code] = entry{result: cloneResult(result), expiresAt: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, codes ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, code := range codes {
		delete(c.entries, code)
	}
	return nil
}

func cloneResult(r *models.VerificationResult) *models.VerificationResult {
	out := *r
	out.Certificate = r.Certificate.Clone()
	return &out
}
