package service

import (
	"context"

	"github.com/trustmodel/registry-server/internal/artifact"
	"github.com/trustmodel/registry-server/internal/scoring"
)

// metricScorer is the production Scorer: it resolves the URL's scoring
// context, wires in the net scores of any already-rated parents, and
// runs the metric registry.
type metricScorer struct {
	resolver  *scoring.Resolver
	evaluator *scoring.Evaluator
}

// NewScorer builds a Scorer over the resolution and evaluation layers.
func NewScorer(resolver *scoring.Resolver, evaluator *scoring.Evaluator) Scorer {
	return &metricScorer{resolver: resolver, evaluator: evaluator}
}

// Score resolves and rates one URL. The clone held by the resolved
// resource is released before returning.
func (s *metricScorer) Score(ctx context.Context, url string, knownScores map[string]float64) (*artifact.Rating, []string, error) {
	res := s.resolver.Resolve(ctx, url)
	defer s.resolver.Release(ctx, res)

	for _, parent := range res.ParentNames {
		if score, ok := knownScores[parent]; ok {
			res.ParentNetScores = append(res.ParentNetScores, score)
		}
	}

	rating := s.evaluator.Evaluate(ctx, res)
	return &rating, res.ParentNames, nil
}
