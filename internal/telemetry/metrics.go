package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ScoringMetricsMeterName is the name used for the scoring metrics meter.
const ScoringMetricsMeterName = "github.com/trustmodel/registry-server/scoring"

// ScoringMetrics holds the OpenTelemetry instruments for artifact
// scoring.
type ScoringMetrics struct {
	scoringDuration metric.Float64Histogram
	ingestsTotal    metric.Int64Counter
}

// NewScoringMetrics creates a ScoringMetrics instance with the given
// meter provider. If provider is nil, it returns nil (no-op metrics).
func NewScoringMetrics(provider metric.MeterProvider) (*ScoringMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(ScoringMetricsMeterName)

	scoringDuration, err := meter.Float64Histogram(
		"modreg_scoring_duration_seconds",
		metric.WithDescription("Duration of artifact scoring runs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120),
	)
	if err != nil {
		return nil, err
	}

	ingestsTotal, err := meter.Int64Counter(
		"modreg_ingests_total",
		metric.WithDescription("Total number of artifact ingestion attempts"),
		metric.WithUnit("{artifact}"),
	)
	if err != nil {
		return nil, err
	}

	return &ScoringMetrics{
		scoringDuration: scoringDuration,
		ingestsTotal:    ingestsTotal,
	}, nil
}

// RecordScoring records one scoring run for a resource category.
func (m *ScoringMetrics) RecordScoring(ctx context.Context, category string, duration time.Duration) {
	if m == nil || m.scoringDuration == nil {
		return
	}
	m.scoringDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("category", category)))
}

// RecordIngest records one ingestion attempt and its outcome.
func (m *ScoringMetrics) RecordIngest(ctx context.Context, artifactType string, accepted bool) {
	if m == nil || m.ingestsTotal == nil {
		return
	}
	m.ingestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", artifactType),
		attribute.Bool("accepted", accepted),
	))
}
