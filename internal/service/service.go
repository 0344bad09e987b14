// Package service implements the registry's business logic: artifact
// ingestion with score gating, CRUD, search, history, rating, cost, and
// lineage.
package service

import (
	"context"
	"errors"

	"github.com/trustmodel/registry-server/internal/artifact"
)

var (
	// ErrNotFound is returned when the requested artifact does not exist.
	ErrNotFound = errors.New("artifact not found")

	// ErrInvalidArtifact is returned when an artifact violates a request
	// invariant, such as setting both content and url.
	ErrInvalidArtifact = errors.New("invalid artifact")

	// ErrDisqualified is returned when an ingested model's net score
	// falls below the ingestion threshold.
	ErrDisqualified = errors.New("artifact disqualified by rating")

	// ErrNotImplemented is returned by stub operations.
	ErrNotImplemented = errors.New("not implemented")
)

// LineageNode is one model in a lineage graph.
type LineageNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LineageEdge is a parent-to-child relationship between models.
type LineageEdge struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// Lineage is the ancestry graph recorded for a model at ingestion.
type Lineage struct {
	Nodes []LineageNode `json:"nodes"`
	Edges []LineageEdge `json:"edges"`
}

// Cost reports the storage footprint of an artifact.
type Cost struct {
	ID        string  `json:"id"`
	TotalCost float64 `json:"total_cost"`
}

// RegistryService is the interface for registry operations.
type RegistryService interface {
	// CreateArtifact registers an artifact: by URL (which triggers
	// scoring, and for models the ingestion gate) or by uploaded
	// content. Returns the stored artifact with its assigned id.
	CreateArtifact(ctx context.Context, art *artifact.Artifact) (*artifact.Artifact, error)

	// GetArtifact retrieves an artifact by id.
	GetArtifact(ctx context.Context, id string) (*artifact.Artifact, error)

	// UpdateArtifact replaces an artifact's content. The id is immutable
	// and the ingestion mode must match the original.
	UpdateArtifact(ctx context.Context, art *artifact.Artifact) error

	// DeleteArtifact removes an artifact.
	DeleteArtifact(ctx context.Context, id string) error

	// ListArtifacts returns artifacts matching the queries, windowed by
	// offset and limit.
	ListArtifacts(ctx context.Context, queries []artifact.Query, offset, limit int) ([]artifact.Artifact, error)

	// SearchByRegex returns artifacts whose name or id matches the
	// expression.
	SearchByRegex(ctx context.Context, expr string) ([]artifact.Artifact, error)

	// History returns the audit trail for all artifacts with the given
	// name.
	History(ctx context.Context, name string) ([]artifact.AuditEntry, error)

	// Rate returns the artifact's rating, computing it on demand for
	// URL-ingested artifacts that have not been rated yet.
	Rate(ctx context.Context, id string) (*artifact.Rating, error)

	// GetCost reports the storage cost of an artifact.
	GetCost(ctx context.Context, id string) (*Cost, error)

	// GetLineage returns the recorded ancestry graph for a model.
	GetLineage(ctx context.Context, id string) (*Lineage, error)

	// Reset drops all registry state.
	Reset(ctx context.Context) error
}
