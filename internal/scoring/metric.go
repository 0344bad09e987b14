// Package scoring implements the heuristic quality metrics computed for
// registered artifacts and their aggregation into a composite net score.
package scoring

import (
	"context"
	"fmt"

	"github.com/google/go-github/v83/github"
	"golang.org/x/oauth2"
)

// Sample is the uniform result of a single metric computation.
type Sample struct {
	// Score is the metric value, clamped to [0,1] by the aggregator.
	Score float64

	// Latency is the wall-clock computation time in milliseconds.
	Latency int64
}

// Metric is a single named scoring heuristic. Implementations degrade to
// a zero score on failure rather than returning an error for expected
// conditions such as missing repositories or unreachable hubs.
type Metric interface {
	// Name returns the metric's rating field name.
	Name() string

	// Compute scores the resource.
	Compute(ctx context.Context, res *Resource) (float64, error)
}

// Registry holds the set of metrics to run for each resource.
type Registry struct {
	metrics []Metric
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a metric. Registering two metrics with the same name
// is an error.
func (r *Registry) Register(m Metric) error {
	for _, existing := range r.metrics {
		if existing.Name() == m.Name() {
			return fmt.Errorf("metric %q already registered", m.Name())
		}
	}
	r.metrics = append(r.metrics, m)
	return nil
}

// Metrics returns the registered metrics in registration order.
func (r *Registry) Metrics() []Metric {
	return r.metrics
}

// RegistryOption configures DefaultRegistry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	github *github.Client
}

// WithGitHubClient supplies an authenticated GitHub client used by the
// license metric to look up a repository's declared license when no
// clone is available.
func WithGitHubClient(client *github.Client) RegistryOption {
	return func(c *registryConfig) {
		c.github = client
	}
}

// NewGitHubClient builds a GitHub API client, authenticated when token is
// non-empty.
func NewGitHubClient(ctx context.Context, token string) *github.Client {
	if token == "" {
		return github.NewClient(nil)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(ctx, ts))
}

// DefaultRegistry returns a registry populated with the full metric set.
func DefaultRegistry(opts ...RegistryOption) *Registry {
	cfg := &registryConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	r := NewRegistry()
	for _, m := range []Metric{
		&busFactorMetric{},
		&codeQualityMetric{},
		&rampUpTimeMetric{},
		&licenseMetric{github: cfg.github},
		&performanceClaimsMetric{},
		&datasetAndCodeMetric{},
		&datasetQualityMetric{},
		&reviewednessMetric{},
		&reproducibilityMetric{},
		&treeScoreMetric{},
	} {
		// Names are distinct by construction.
		_ = r.Register(m)
	}
	return r
}
