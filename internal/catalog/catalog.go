// Package catalog serves a cached, read-only view of the external learning
// module catalog. Content itself lives outside the engine; this layer only
// keeps repeated listings from hammering the upstream store.
package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"edulearn-engine/internal/domain"

	"golang.org/x/sync/singleflight"
)

// Loader fetches the module catalog from its backing store.
type Loader interface {
	LoadModules(ctx context.Context) ([]domain.ModuleInfo, error)
}

// Cache memoizes the catalog with a TTL to avoid repeated upstream hits.
type Cache struct {
	loader Loader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	modules   []domain.ModuleInfo
	expiresAt time.Time
}

func NewCache(loader Loader, ttl time.Duration) *Cache {
	return &Cache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// List returns all modules, optionally filtered by subject.
func (c *Cache) List(ctx context.Context, subject string) ([]domain.ModuleInfo, error) {
	modules, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	if subject == "" {
		return modules, nil
	}
	filtered := make([]domain.ModuleInfo, 0, len(modules))
	for _, m := range modules {
		if strings.EqualFold(m.Subject, subject) {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

// Get returns a single module by id.
func (c *Cache) Get(ctx context.Context, id string) (domain.ModuleInfo, error) {
	modules, err := c.all(ctx)
	if err != nil {
		return domain.ModuleInfo{}, err
	}
	for _, m := range modules {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.ModuleInfo{}, fmt.Errorf("module %s: %w", id, domain.ErrNotFound)
}

func (c *Cache) all(ctx context.Context) ([]domain.ModuleInfo, error) {
	now := c.clock()

	c.mu.RLock()
	if c.modules != nil && c.expiresAt.After(now) {
		modules := c.modules
		c.mu.RUnlock()
		return modules, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("catalog", func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.modules != nil && c.expiresAt.After(now) {
			modules := c.modules
			c.mu.RUnlock()
			return modules, nil
		}
		c.mu.RUnlock()

		modules, err := c.loader.LoadModules(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.modules = modules
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return modules, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.ModuleInfo), nil
}

func (c *Cache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
