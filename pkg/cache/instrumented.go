package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/meshtopo/pkg/observability"
)

// Instrumented reports cache traffic to [observability.Cache]. The key type
// passed to the hooks is the part of the key before the first colon, such
// as "result" or "render".
type Instrumented struct {
	Cache
}

// Instrument wraps c so that its traffic reaches the registered hooks.
func Instrument(c Cache) *Instrumented {
	return &Instrumented{Cache: c}
}

// Get implements [Cache].
func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, hit, err
}

// Set implements [Cache].
func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

// Clear forwards to the wrapped cache when it supports clearing.
func (c *Instrumented) Clear(ctx context.Context) (int, error) {
	if cl, ok := c.Cache.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return 0, nil
}

func keyType(key string) string {
	// Scoped keys carry a prefix ending in a colon; the type is the last
	// segment before the hash.
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[len(parts)-2]
}

// Unwrap returns the cache wrapped by [Instrument], or c itself.
func Unwrap(c Cache) Cache {
	if i, ok := c.(*Instrumented); ok {
		return i.Cache
	}
	return c
}
