// Package storage provides the artifact persistence layer: an in-memory
// store for single-process deployments and a GCS-backed store for
// deployments that need artifacts to survive restarts.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/trustmodel/registry-server/internal/artifact"
)

var (
	// ErrNotFound is returned when no artifact exists with the given id.
	ErrNotFound = errors.New("artifact not found")

	// ErrAlreadyExists is returned when putting an artifact whose id is
	// already taken.
	ErrAlreadyExists = errors.New("artifact already exists")

	// ErrRatingNotFound is returned when an artifact has no recorded
	// rating.
	ErrRatingNotFound = errors.New("rating not found")
)

// Store persists artifacts and their ratings. Implementations are
// pass-through key-value adapters; they provide no transactional
// guarantees across calls.
type Store interface {
	// Put stores a new artifact.
	Put(ctx context.Context, art *artifact.Artifact) error

	// Get retrieves an artifact by id.
	Get(ctx context.Context, id string) (*artifact.Artifact, error)

	// Update replaces an existing artifact.
	Update(ctx context.Context, art *artifact.Artifact) error

	// Delete removes an artifact and its rating.
	Delete(ctx context.Context, id string) error

	// List returns artifacts matching any of the queries, name-ordered,
	// windowed by offset and limit. A nil query list matches everything.
	List(ctx context.Context, queries []artifact.Query, offset, limit int) ([]artifact.Artifact, error)

	// SearchRegex returns artifacts whose name or id matches the
	// expression.
	SearchRegex(ctx context.Context, expr string) ([]artifact.Artifact, error)

	// Reset drops all artifacts and ratings.
	Reset(ctx context.Context) error

	// PutRating records the rating for an artifact.
	PutRating(ctx context.Context, id string, rating *artifact.Rating) error

	// GetRating retrieves the recorded rating for an artifact.
	GetRating(ctx context.Context, id string) (*artifact.Rating, error)

	// NetScores returns the recorded net score for every rated artifact,
	// keyed by artifact name.
	NetScores(ctx context.Context) (map[string]float64, error)
}

const (
	// TypeMemory selects the in-process store.
	TypeMemory = "memory"

	// TypeGCS selects the Google Cloud Storage backed store.
	TypeGCS = "gcs"
)

// Config selects and parameterizes a storage backend.
type Config struct {
	// Type is the backend name: "memory" or "gcs".
	Type string `yaml:"type"`

	// Bucket is the GCS bucket name, required for the gcs backend.
	Bucket string `yaml:"bucket"`
}

// NewStore builds the store selected by the config.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case "", TypeMemory:
		return NewMemoryStore(), nil
	case TypeGCS:
		return NewGCSStore(ctx, cfg.Bucket)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
