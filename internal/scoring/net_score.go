package scoring

// metricWeights are the relative weights of each metric in the composite
// net score.
var metricWeights = map[string]float64{
	"ramp_up_time":           0.15,
	"bus_factor":             0.15,
	"license":                0.15,
	"dataset_and_code_score": 0.20,
	"dataset_quality":        0.15,
	"code_quality":           0.10,
	"performance_claims":     0.10,
	"reproducibility":        0.20,
	"reviewedness":           0.20,
	"tree_score":             0.20,
}

// NetScore computes the weighted composite score over the metrics
// present in scores, normalized by the weight actually present. Scores
// are clamped to [0,1] before weighting; unknown metric names are
// ignored.
func NetScore(scores map[string]float64) float64 {
	weightedSum := 0.0
	totalWeight := 0.0

	for name, weight := range metricWeights {
		score, ok := scores[name]
		if !ok {
			continue
		}
		weightedSum += weight * clamp01(score)
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
