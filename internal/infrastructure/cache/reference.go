// Package cache holds in-process caches for ERP reference ids.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ReferenceCache implements usecase.ReferenceCache with expiring entries.
type ReferenceCache struct {
	store *gocache.Cache
}

// NewReferenceCache creates a cache whose entries live for ttl.
func NewReferenceCache(ttl time.Duration) *ReferenceCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ReferenceCache{store: gocache.New(ttl, 2*ttl)}
}

func (c *ReferenceCache) Get(key string) (int64, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func (c *ReferenceCache) Set(key string, id int64) {
	c.store.SetDefault(key, id)
}
