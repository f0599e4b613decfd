package cache

import (
	"strings"
	"time"
)

const defaultViewTTL = 30 * time.Second

// ViewCache memoizes rendered dashboard views keyed by view name and variant.
type ViewCache interface {
	Get(view, variant string) (any, bool)
	Set(view, variant string, value any)
	Invalidate()
}

type viewCache struct {
	views Cache[string, any]
	ttl   func() time.Duration
}

// NewViewCache returns an in-memory view cache. ttl is consulted on every
// Set so configuration reloads apply to new entries.
func NewViewCache(ttl func() time.Duration, opts ...Option) ViewCache {
	if ttl == nil {
		ttl = func() time.Duration { return defaultViewTTL }
	}
	return &viewCache{
		views: NewTTLCache[string, any](opts...),
		ttl:   ttl,
	}
}

func (c *viewCache) Get(view, variant string) (any, bool) {
	return c.views.Get(cacheKey(view, variant))
}

func (c *viewCache) Set(view, variant string, value any) {
	if value == nil {
		return
	}
	c.views.Set(cacheKey(view, variant), value, c.ttl())
}

func (c *viewCache) Invalidate() {
	c.views.Clear()
}

func cacheKey(parts ...string) string {
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		values = append(values, strings.ToLower(trimmed))
	}
	return strings.Join(values, "|")
}
