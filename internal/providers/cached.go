package providers

import (
	"context"

	"github.com/dshills/revio/internal/cache"
)

type cached struct {
	Backend
	cache *cache.Cache
}

// WithCache memoizes successful FixCode answers in c, keyed on backend,
// model, path and content. A nil or disabled cache returns b unchanged.
func WithCache(b Backend, c *cache.Cache) Backend {
	if c == nil || !c.Enabled() {
		return b
	}
	return &cached{Backend: b, cache: c}
}

func (c *cached) FixCode(ctx context.Context, path, content, model string) (string, error) {
	key := cache.KeyFor(c.Name(), model, path, content)
	if hit, ok := c.cache.Get(key); ok {
		return hit, nil
	}
	out, err := c.Backend.FixCode(ctx, path, content, model)
	if err != nil {
		return "", err
	}
	// A failed write only costs a future cache miss.
	_ = c.cache.Put(key, out)
	return out, nil
}
