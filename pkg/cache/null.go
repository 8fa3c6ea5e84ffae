package cache

import (
	"context"
	"time"
)

// NullCache backs --no-cache and a disabled [cache] section. Every lookup
// misses, so each document is regularized, triangulated and improved from
// scratch and nothing is rendered twice from a stored result.
type NullCache struct{}

// NewNullCache returns a cache that keeps no meshes.
func NewNullCache() Cache { return &NullCache{} }

// Get reports a miss for every key.
func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards the entry.
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (*NullCache) Delete(context.Context, string) error { return nil }

func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
