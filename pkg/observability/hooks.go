// Package observability provides hooks for metrics, tracing, and logging.
//
// Consumers register hooks at startup to receive events about mesh
// processing, cache lookups and mesh storage. Libraries never import a
// metrics backend; they call the registered hooks, which default to no-ops.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetMeshHooks(&myMeshHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Mesh().OnStageStart(ctx, "regularize", m.EdgeCount())
//	// ... run the stage ...
//	observability.Mesh().OnStageComplete(ctx, "regularize", edits, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Mesh Hooks
// =============================================================================

// MeshHooks receives events from the mesh processing pipeline.
type MeshHooks interface {
	// OnStageStart is called before a pipeline stage runs on a mesh with
	// the given number of edges.
	OnStageStart(ctx context.Context, stage string, edges int)

	// OnStageComplete is called after a stage. edits counts the edges the
	// stage inserted or flipped.
	OnStageComplete(ctx context.Context, stage string, edits int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from mesh storage backends.
type StoreHooks interface {
	// OnSave records a stored mesh.
	OnSave(ctx context.Context, backend string, duration time.Duration, err error)

	// OnLoad records a mesh lookup.
	OnLoad(ctx context.Context, backend string, found bool, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopMeshHooks is a no-op implementation of MeshHooks.
type NoopMeshHooks struct{}

func (NoopMeshHooks) OnStageStart(context.Context, string, int)                          {}
func (NoopMeshHooks) OnStageComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnSave(context.Context, string, time.Duration, error)       {}
func (NoopStoreHooks) OnLoad(context.Context, string, bool, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	meshHooks  MeshHooks  = NoopMeshHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	storeHooks StoreHooks = NoopStoreHooks{}
	hooksMu    sync.RWMutex
)

// SetMeshHooks registers custom mesh hooks. Nil is ignored.
func SetMeshHooks(h MeshHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		meshHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetStoreHooks registers custom store hooks. Nil is ignored.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Mesh returns the registered mesh hooks.
func Mesh() MeshHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return meshHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	meshHooks = NoopMeshHooks{}
	cacheHooks = NoopCacheHooks{}
	storeHooks = NoopStoreHooks{}
}

// =============================================================================
// Log Hooks
// =============================================================================

// Logger is the subset of *log.Logger used by [LogMeshHooks].
type Logger interface {
	Debug(msg any, keyvals ...any)
}

// LogMeshHooks reports stage timings to a logger at debug level.
type LogMeshHooks struct {
	Logger Logger
}

// OnStageStart implements [MeshHooks].
func (h LogMeshHooks) OnStageStart(_ context.Context, stage string, edges int) {
	h.Logger.Debug("stage start", "stage", stage, "edges", edges)
}

// OnStageComplete implements [MeshHooks].
func (h LogMeshHooks) OnStageComplete(_ context.Context, stage string, edits int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("stage failed", "stage", stage, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("stage done", "stage", stage, "edits", edits, "duration", d)
}
