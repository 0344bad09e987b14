package scoring

import "context"

// treeScoreMetric scores a model by the recorded net scores of its
// parent models from the lineage graph. With no scored parents the
// metric is 0: an unknown ancestry earns no trust.
type treeScoreMetric struct{}

func (*treeScoreMetric) Name() string { return "tree_score" }

func (*treeScoreMetric) Compute(_ context.Context, res *Resource) (float64, error) {
	if len(res.ParentNetScores) == 0 {
		return 0, nil
	}
	sum := 0.0
	for _, s := range res.ParentNetScores {
		sum += s
	}
	return sum / float64(len(res.ParentNetScores)), nil
}
