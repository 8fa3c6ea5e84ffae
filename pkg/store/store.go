// Package store persists processed meshes.
//
// A [Record] holds the input document, the processed mesh and its quality
// summary. Records are keyed by a random UUID assigned on first save.
//
// Two backends are provided:
//   - [MemoryStore]: in-process storage for the CLI and tests
//   - [MongoStore]: MongoDB storage for the HTTP server
//
// Both report saves and loads to [observability.Store].
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/meshtopo/pkg/mesh/quality"
	"github.com/matzehuels/meshtopo/pkg/meshio"
)

// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("record not found")

// DefaultListLimit bounds [Store.List] when the caller passes zero.
const DefaultListLimit = 50

// Record is a stored processing result.
type Record struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// InputHash is the content hash of Input.
	InputHash string `json:"input_hash" bson:"input_hash"`
	// CacheKey is the result cache key the record was produced under.
	CacheKey string `json:"cache_key,omitempty" bson:"cache_key,omitempty"`

	Input  *meshio.Document `json:"input" bson:"input"`
	Output *meshio.Output   `json:"output" bson:"output"`
	Stats  quality.Summary  `json:"stats" bson:"stats"`
}

// Store persists records.
type Store interface {
	// Put saves r, assigning an ID and creation time when they are unset,
	// and returns the ID. Saving an existing ID replaces the record.
	Put(ctx context.Context, r *Record) (string, error)

	// Get returns the record with the given ID or [ErrNotFound].
	Get(ctx context.Context, id string) (*Record, error)

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases the backend's resources.
	Close(ctx context.Context) error
}

// prepare fills in the ID and creation time of a record about to be saved.
func prepare(r *Record) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
