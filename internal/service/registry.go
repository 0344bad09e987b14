package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trustmodel/registry-server/internal/artifact"
	"github.com/trustmodel/registry-server/internal/storage"
	"github.com/trustmodel/registry-server/internal/telemetry"
)

// DefaultGateThreshold is the minimum net score a URL-ingested model
// must reach to be registered.
const DefaultGateThreshold = 0.25

// Scorer rates a URL-identified artifact. knownScores maps already-rated
// artifact names to their net scores, for lineage-based metrics. The
// returned parent names are the model's base_model references.
type Scorer interface {
	Score(ctx context.Context, url string, knownScores map[string]float64) (*artifact.Rating, []string, error)
}

// registryService implements RegistryService over a storage backend and
// a scorer. Audit history and lineage are kept in process memory; they
// are conveniences, not durable records.
type registryService struct {
	store   storage.Store
	scorer  Scorer
	gate    float64
	user    artifact.User
	now     func() time.Time
	metrics *telemetry.ScoringMetrics

	mu      sync.Mutex
	audit   map[string][]artifact.AuditEntry
	parents map[string][]string
}

// Option configures the registry service.
type Option func(*registryService)

// WithGateThreshold overrides the model ingestion score threshold.
func WithGateThreshold(gate float64) Option {
	return func(s *registryService) {
		s.gate = gate
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *registryService) {
		s.now = now
	}
}

// WithMetrics instruments ingestion and scoring. ScoringMetrics methods
// are nil-safe, so the option may be omitted entirely.
func WithMetrics(m *telemetry.ScoringMetrics) Option {
	return func(s *registryService) {
		s.metrics = m
	}
}

// New creates the registry service.
func New(store storage.Store, scorer Scorer, opts ...Option) RegistryService {
	s := &registryService{
		store:   store,
		scorer:  scorer,
		gate:    DefaultGateThreshold,
		user:    artifact.User{Name: "admin", IsAdmin: true},
		now:     time.Now,
		audit:   make(map[string][]artifact.AuditEntry),
		parents: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateArtifact registers an artifact, scoring URL ingestions and
// gating models on their net score.
func (s *registryService) CreateArtifact(ctx context.Context, art *artifact.Artifact) (*artifact.Artifact, error) {
	if err := art.Data.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArtifact, err)
	}

	stored := *art
	stored.Metadata.ID = uuid.NewString()

	var rating *artifact.Rating
	var parentNames []string
	if !stored.Data.IsUpload() {
		if stored.Metadata.Type == "" {
			stored.Metadata.Type = artifact.Classify(stored.Data.URL).Type()
		}
		if stored.Metadata.Name == "" {
			stored.Metadata.Name = artifact.NameFromURL(stored.Data.URL)
		}

		var err error
		rating, parentNames, err = s.scoreURL(ctx, stored.Data.URL)
		if err != nil {
			return nil, err
		}
		if stored.Metadata.Type == artifact.TypeModel && rating.NetScore < s.gate {
			s.metrics.RecordIngest(ctx, string(stored.Metadata.Type), false)
			return nil, fmt.Errorf("%w: net score %.3f below threshold %.2f",
				ErrDisqualified, rating.NetScore, s.gate)
		}
	} else if stored.Metadata.Type == "" {
		stored.Metadata.Type = artifact.TypeCode
	}
	if stored.Metadata.Version == "" {
		stored.Metadata.Version = "1.0.0"
	}

	if err := s.store.Put(ctx, &stored); err != nil {
		return nil, fmt.Errorf("failed to store artifact: %w", err)
	}
	if rating != nil {
		if err := s.store.PutRating(ctx, stored.Metadata.ID, rating); err != nil {
			slog.WarnContext(ctx, "Failed to store rating", "id", stored.Metadata.ID, "error", err)
		}
	}

	s.metrics.RecordIngest(ctx, string(stored.Metadata.Type), true)
	s.recordAudit(&stored.Metadata, artifact.ActionCreate)
	if len(parentNames) > 0 {
		s.mu.Lock()
		s.parents[stored.Metadata.ID] = parentNames
		s.mu.Unlock()
	}
	return &stored, nil
}

// GetArtifact retrieves an artifact by id.
func (s *registryService) GetArtifact(ctx context.Context, id string) (*artifact.Artifact, error) {
	art, err := s.store.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("id %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact: %w", err)
	}
	return art, nil
}

// UpdateArtifact replaces an artifact in place. The ingestion mode must
// match the original registration.
func (s *registryService) UpdateArtifact(ctx context.Context, art *artifact.Artifact) error {
	if err := art.Data.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArtifact, err)
	}

	existing, err := s.GetArtifact(ctx, art.Metadata.ID)
	if err != nil {
		return err
	}
	if existing.Data.IsUpload() != art.Data.IsUpload() {
		return fmt.Errorf("%w: ingestion mode cannot change", ErrInvalidArtifact)
	}

	if err := s.store.Update(ctx, art); err != nil {
		return fmt.Errorf("failed to update artifact: %w", err)
	}
	s.recordAudit(&art.Metadata, artifact.ActionUpdate)
	return nil
}

// DeleteArtifact removes an artifact.
func (s *registryService) DeleteArtifact(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("id %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}

	s.mu.Lock()
	delete(s.parents, id)
	s.mu.Unlock()
	return nil
}

// ListArtifacts returns artifacts matching the queries.
func (s *registryService) ListArtifacts(ctx context.Context, queries []artifact.Query, offset, limit int) ([]artifact.Artifact, error) {
	arts, err := s.store.List(ctx, queries, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return arts, nil
}

// SearchByRegex returns artifacts whose name or id matches the
// expression.
func (s *registryService) SearchByRegex(ctx context.Context, expr string) ([]artifact.Artifact, error) {
	arts, err := s.store.SearchRegex(ctx, expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArtifact, err)
	}
	return arts, nil
}

// History returns the audit trail recorded for artifacts with the given
// name.
func (s *registryService) History(_ context.Context, name string) ([]artifact.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []artifact.AuditEntry
	for _, list := range s.audit {
		for _, e := range list {
			if e.Metadata.Name == name {
				entries = append(entries, e)
			}
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("name %s: %w", name, ErrNotFound)
	}
	return entries, nil
}

// Rate returns the artifact's rating. Uploaded artifacts have no source
// to score and rate as zero; URL ingestions reuse the rating recorded at
// creation, computing it on demand if absent.
func (s *registryService) Rate(ctx context.Context, id string) (*artifact.Rating, error) {
	art, err := s.GetArtifact(ctx, id)
	if err != nil {
		return nil, err
	}

	if art.Data.IsUpload() {
		return &artifact.Rating{Name: art.Metadata.Name}, nil
	}

	rating, err := s.store.GetRating(ctx, id)
	if err == nil {
		s.recordAudit(&art.Metadata, artifact.ActionRate)
		return rating, nil
	}
	if !errors.Is(err, storage.ErrRatingNotFound) {
		return nil, fmt.Errorf("failed to load rating: %w", err)
	}

	rating, _, err = s.scoreURL(ctx, art.Data.URL)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutRating(ctx, id, rating); err != nil {
		slog.WarnContext(ctx, "Failed to store rating", "id", id, "error", err)
	}
	s.recordAudit(&art.Metadata, artifact.ActionRate)
	return rating, nil
}

// GetCost reports the decoded content size in bytes. URL-only artifacts
// occupy no registry storage and cost zero.
func (s *registryService) GetCost(ctx context.Context, id string) (*Cost, error) {
	art, err := s.GetArtifact(ctx, id)
	if err != nil {
		return nil, err
	}

	cost := &Cost{ID: id}
	if art.Data.Content != "" {
		decoded, err := base64.StdEncoding.DecodeString(art.Data.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: content is not valid base64", ErrInvalidArtifact)
		}
		cost.TotalCost = float64(len(decoded))
	}
	return cost, nil
}

// GetLineage returns the parent graph recorded for a model at ingestion.
// Parents that were never registered appear as name-only nodes.
func (s *registryService) GetLineage(ctx context.Context, id string) (*Lineage, error) {
	art, err := s.GetArtifact(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	parentNames := append([]string(nil), s.parents[id]...)
	s.mu.Unlock()

	lineage := &Lineage{
		Nodes: []LineageNode{{ID: art.Metadata.ID, Name: art.Metadata.Name}},
	}
	for _, name := range parentNames {
		node := LineageNode{Name: name}
		if matches, err := s.store.List(ctx, []artifact.Query{{Name: name}}, 0, 1); err == nil && len(matches) > 0 {
			node.ID = matches[0].Metadata.ID
		}
		lineage.Nodes = append(lineage.Nodes, node)
		lineage.Edges = append(lineage.Edges, LineageEdge{Parent: name, Child: art.Metadata.Name})
	}
	return lineage, nil
}

// Reset drops all registry state.
func (s *registryService) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset storage: %w", err)
	}

	s.mu.Lock()
	s.audit = make(map[string][]artifact.AuditEntry)
	s.parents = make(map[string][]string)
	s.mu.Unlock()
	return nil
}

func (s *registryService) scoreURL(ctx context.Context, url string) (*artifact.Rating, []string, error) {
	knownScores, err := s.store.NetScores(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load recorded net scores", "error", err)
		knownScores = nil
	}

	start := s.now()
	rating, parents, err := s.scorer.Score(ctx, url, knownScores)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to score %s: %w", url, err)
	}
	s.metrics.RecordScoring(ctx, rating.Category, time.Since(start))
	return rating, parents, nil
}

func (s *registryService) recordAudit(md *artifact.Metadata, action string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audit[md.ID] = append(s.audit[md.ID], artifact.AuditEntry{
		User:     s.user,
		Date:     s.now().UTC().Format(time.RFC3339),
		Metadata: *md,
		Action:   action,
	})
}
