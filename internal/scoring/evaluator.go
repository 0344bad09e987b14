package scoring

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trustmodel/registry-server/internal/artifact"
)

// DefaultWorkers bounds how many resources are scored in parallel.
const DefaultWorkers = 8

// Evaluator runs a metric registry against resources and assembles
// ratings.
type Evaluator struct {
	registry *Registry
	workers  int
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithWorkers overrides the parallelism bound for batch evaluation.
func WithWorkers(n int) EvaluatorOption {
	return func(e *Evaluator) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEvaluator builds an evaluator over the given registry.
func NewEvaluator(registry *Registry, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		registry: registry,
		workers:  DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs every registered metric against the resource and
// assembles the rating. Metrics run sequentially; a metric that fails
// contributes a zero score but still counts toward the net score
// weights. The net score latency is the sum of the metric latencies.
func (e *Evaluator) Evaluate(ctx context.Context, res *Resource) artifact.Rating {
	rating := artifact.Rating{
		Name:     res.Name,
		Category: string(res.Category),
	}

	scores := make(map[string]float64, len(e.registry.Metrics()))
	var totalLatency int64

	for _, metric := range e.registry.Metrics() {
		sample := e.run(ctx, metric, res)
		scores[metric.Name()] = sample.Score
		rating.Set(metric.Name(), sample.Score, sample.Latency)
		totalLatency += sample.Latency
	}

	sizeStart := time.Now()
	rating.SizeScore = SizeScore(res)
	rating.SizeScoreLatency = time.Since(sizeStart).Milliseconds()
	totalLatency += rating.SizeScoreLatency

	rating.NetScore = NetScore(scores)
	rating.NetScoreLatency = totalLatency
	return rating
}

// run computes one metric with timing, clamping the score and degrading
// to zero on error.
func (e *Evaluator) run(ctx context.Context, metric Metric, res *Resource) Sample {
	start := time.Now()
	score, err := metric.Compute(ctx, res)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		slog.DebugContext(ctx, "Metric failed, scoring zero",
			"metric", metric.Name(), "resource", res.URL, "error", err)
		score = 0
	}
	return Sample{Score: clamp01(score), Latency: latency}
}

// EvaluateURLs resolves and scores the URLs with bounded workers,
// preserving input order in the result. Each resource is released as
// soon as its rating is done, so at most `workers` clones are held at
// once. Net scores of finished resources feed the ancestry metric of
// later ones on a best-effort basis.
func (e *Evaluator) EvaluateURLs(ctx context.Context, resolver *Resolver, urls []string) []artifact.Rating {
	ratings := make([]artifact.Rating, len(urls))

	var mu sync.Mutex
	knownScores := make(map[string]float64)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, url := range urls {
		g.Go(func() error {
			slog.InfoContext(ctx, "Scoring artifact", "url", url)
			res := resolver.Resolve(ctx, url)
			defer resolver.Release(ctx, res)

			mu.Lock()
			for _, parent := range res.ParentNames {
				if score, ok := knownScores[parent]; ok {
					res.ParentNetScores = append(res.ParentNetScores, score)
				}
			}
			mu.Unlock()

			ratings[i] = e.Evaluate(ctx, res)

			mu.Lock()
			knownScores[res.Name] = ratings[i].NetScore
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; degraded metrics score zero instead.
	_ = g.Wait()

	return ratings
}
