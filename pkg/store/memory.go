package store

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/meshtopo/pkg/observability"
)

// MemoryStore keeps records in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Put implements [Store].
func (s *MemoryStore) Put(ctx context.Context, r *Record) (string, error) {
	start := time.Now()
	prepare(r)
	cp := *r

	s.mu.Lock()
	s.records[r.ID] = &cp
	s.mu.Unlock()

	observability.Store().OnSave(ctx, "memory", time.Since(start), nil)
	return r.ID, nil
}

// Get implements [Store].
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	start := time.Now()
	s.mu.RLock()
	r, ok := s.records[id]
	s.mu.RUnlock()

	observability.Store().OnLoad(ctx, "memory", ok, time.Since(start), nil)
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// List implements [Store].
func (s *MemoryStore) List(ctx context.Context, limit int) ([]*Record, error) {
	s.mu.RLock()
	out := slices.Collect(maps.Values(s.records))
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if n := listLimit(limit); len(out) > n {
		out = out[:n]
	}
	for i, r := range out {
		cp := *r
		out[i] = &cp
	}
	return out, nil
}

// Delete implements [Store].
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(context.Context) error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
