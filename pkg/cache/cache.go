// Package cache stores processed meshes and rendered artifacts by content
// hash.
//
// # Overview
//
// The pipeline is deterministic: the same input document processed with the
// same options always yields the same mesh. Results are therefore cached
// under a key derived from a hash of the input and the options that affect
// the output, and rendered images under a key derived from the result hash
// and the render options.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//   - [NullCache]: disables caching
//
// [Instrument] wraps any backend and reports hits, misses and writes to
// the registered observability hooks.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Default time-to-live values for cached entries.
const (
	ResultTTL = 7 * 24 * time.Hour
	RenderTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. The bool is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// =============================================================================
// Keys
// =============================================================================

// ResultKeyOpts holds the pipeline options that change a processed mesh.
type ResultKeyOpts struct {
	Predicate string  `json:"predicate"`
	Surface   string  `json:"surface"`
	Rotate90  bool    `json:"rotate90"`
	MaxEdge   float64 `json:"max_edge"`
	MaxFlips  int     `json:"max_flips"`
}

// RenderKeyOpts holds the options that change a rendered artifact.
type RenderKeyOpts struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Labels bool   `json:"labels"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ResultKey returns the key of a processed mesh.
	ResultKey(docHash string, opts ResultKeyOpts) string

	// RenderKey returns the key of a rendered artifact.
	RenderKey(resultHash string, opts RenderKeyOpts) string
}

// DefaultKeyer hashes the options into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey implements [Keyer].
func (DefaultKeyer) ResultKey(docHash string, opts ResultKeyOpts) string {
	return hashKey("result", docHash, opts)
}

// RenderKey implements [Keyer].
func (DefaultKeyer) RenderKey(resultHash string, opts RenderKeyOpts) string {
	return hashKey("render", resultHash, opts)
}

var _ Keyer = DefaultKeyer{}

// Hash returns the hex SHA-256 of data. Documents and processed meshes are
// identified by the hash of their canonical JSON.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey names an entry of the given kind ("result" or "render") by the
// hash of the upstream content hash and the options that shaped it.
func hashKey(kind, upstream string, opts any) string {
	data, _ := json.Marshal(struct {
		Hash string `json:"hash"`
		Opts any    `json:"opts"`
	}{upstream, opts})
	return kind + ":" + Hash(data)
}
