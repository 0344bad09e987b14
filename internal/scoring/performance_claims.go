package scoring

import "context"

// performanceClaimsMetric scores hub popularity as a proxy for claims
// holding up in practice, using tiered download counts.
type performanceClaimsMetric struct{}

func (*performanceClaimsMetric) Name() string { return "performance_claims" }

func (*performanceClaimsMetric) Compute(_ context.Context, res *Resource) (float64, error) {
	var downloads int64
	switch {
	case res.Model != nil:
		downloads = res.Model.Downloads
	case res.Dataset != nil:
		downloads = res.Dataset.Downloads
	default:
		return 0, nil
	}
	return downloadTierScore(downloads), nil
}

func downloadTierScore(downloads int64) float64 {
	switch {
	case downloads > 1_000_000:
		return 1.0
	case downloads > 100_000:
		return 0.8
	case downloads > 10_000:
		return 0.6
	case downloads > 1_000:
		return 0.4
	case downloads > 100:
		return 0.2
	default:
		return 0.1
	}
}
