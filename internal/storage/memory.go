package storage

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/trustmodel/registry-server/internal/artifact"
	"github.com/trustmodel/registry-server/internal/versions"
)

// MemoryStore keeps artifacts in process memory. It is the default
// backend; contents are lost on restart.
type MemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]artifact.Artifact
	ratings   map[string]artifact.Rating
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		artifacts: make(map[string]artifact.Artifact),
		ratings:   make(map[string]artifact.Rating),
	}
}

// Put stores a new artifact.
func (s *MemoryStore) Put(_ context.Context, art *artifact.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artifacts[art.Metadata.ID]; ok {
		return fmt.Errorf("id %s: %w", art.Metadata.ID, ErrAlreadyExists)
	}
	s.artifacts[art.Metadata.ID] = *art
	return nil
}

// Get retrieves an artifact by id.
func (s *MemoryStore) Get(_ context.Context, id string) (*artifact.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	art, ok := s.artifacts[id]
	if !ok {
		return nil, fmt.Errorf("id %s: %w", id, ErrNotFound)
	}
	return &art, nil
}

// Update replaces an existing artifact.
func (s *MemoryStore) Update(_ context.Context, art *artifact.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artifacts[art.Metadata.ID]; !ok {
		return fmt.Errorf("id %s: %w", art.Metadata.ID, ErrNotFound)
	}
	s.artifacts[art.Metadata.ID] = *art
	return nil
}

// Delete removes an artifact and its rating.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artifacts[id]; !ok {
		return fmt.Errorf("id %s: %w", id, ErrNotFound)
	}
	delete(s.artifacts, id)
	delete(s.ratings, id)
	return nil
}

// List returns matching artifacts ordered by name then id, windowed by
// offset and limit.
func (s *MemoryStore) List(_ context.Context, queries []artifact.Query, offset, limit int) ([]artifact.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []artifact.Artifact
	for _, art := range s.artifacts {
		if matchesAny(&art.Metadata, queries) {
			matched = append(matched, art)
		}
	}
	sortArtifacts(matched)
	return window(matched, offset, limit), nil
}

// SearchRegex returns artifacts whose name or id matches the expression.
func (s *MemoryStore) SearchRegex(_ context.Context, expr string) ([]artifact.Artifact, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []artifact.Artifact
	for _, art := range s.artifacts {
		if re.MatchString(art.Metadata.Name) || re.MatchString(art.Metadata.ID) {
			matched = append(matched, art)
		}
	}
	sortArtifacts(matched)
	return matched, nil
}

// Reset drops all artifacts and ratings.
func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.artifacts = make(map[string]artifact.Artifact)
	s.ratings = make(map[string]artifact.Rating)
	return nil
}

// PutRating records the rating for an artifact.
func (s *MemoryStore) PutRating(_ context.Context, id string, rating *artifact.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artifacts[id]; !ok {
		return fmt.Errorf("id %s: %w", id, ErrNotFound)
	}
	s.ratings[id] = *rating
	return nil
}

// GetRating retrieves the recorded rating for an artifact.
func (s *MemoryStore) GetRating(_ context.Context, id string) (*artifact.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rating, ok := s.ratings[id]
	if !ok {
		return nil, fmt.Errorf("id %s: %w", id, ErrRatingNotFound)
	}
	return &rating, nil
}

// NetScores returns the recorded net score per rated artifact name.
func (s *MemoryStore) NetScores(_ context.Context) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scores := make(map[string]float64, len(s.ratings))
	for id, rating := range s.ratings {
		art, ok := s.artifacts[id]
		if !ok {
			continue
		}
		scores[art.Metadata.Name] = rating.NetScore
	}
	return scores, nil
}

func matchesAny(md *artifact.Metadata, queries []artifact.Query) bool {
	if len(queries) == 0 {
		return true
	}
	for i := range queries {
		if queries[i].Matches(md) {
			return true
		}
	}
	return false
}

// sortArtifacts orders results by name, then newest version first, then
// id as a final tiebreaker so listings are deterministic.
func sortArtifacts(arts []artifact.Artifact) {
	sort.Slice(arts, func(i, j int) bool {
		if arts[i].Metadata.Name != arts[j].Metadata.Name {
			return arts[i].Metadata.Name < arts[j].Metadata.Name
		}
		if arts[i].Metadata.Version != arts[j].Metadata.Version {
			return versions.IsNewer(arts[i].Metadata.Version, arts[j].Metadata.Version)
		}
		return arts[i].Metadata.ID < arts[j].Metadata.ID
	})
}

func window(arts []artifact.Artifact, offset, limit int) []artifact.Artifact {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(arts) {
		return nil
	}
	arts = arts[offset:]
	if limit > 0 && limit < len(arts) {
		arts = arts[:limit]
	}
	return arts
}
