package scoring

import (
	"context"
	"math"
)

// maxHistoryCommits caps how far back the history metrics scan.
const maxHistoryCommits = 500

// busFactorMetric scores how evenly recent commit authorship is spread.
// A repository maintained by a single person is the riskiest, so it
// scores 0; perfectly uniform multi-author history approaches 1.
type busFactorMetric struct{}

func (*busFactorMetric) Name() string { return "bus_factor" }

func (*busFactorMetric) Compute(_ context.Context, res *Resource) (float64, error) {
	if res.Repo == nil {
		return 0, nil
	}
	authors, err := res.Repo.CommitAuthors(maxHistoryCommits)
	if err != nil {
		return 0, nil
	}
	return busFactorFromAuthors(authors), nil
}

// busFactorFromAuthors computes the Shannon entropy of the author
// frequency distribution, normalized by the maximum possible entropy
// log2(contributors).
func busFactorFromAuthors(authors []string) float64 {
	if len(authors) == 0 {
		return 0
	}

	counts := make(map[string]int)
	for _, a := range authors {
		counts[a]++
	}
	if len(counts) <= 1 {
		return 0
	}

	total := float64(len(authors))
	entropy := 0.0
	for _, c := range counts {
		p := float64(c) / total
		entropy -= p * math.Log2(p)
	}
	return entropy / math.Log2(float64(len(counts)))
}
