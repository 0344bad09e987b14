package scoring

import (
	"context"
	"path"
	"strings"
)

// weightExtensions mark files that hold model weights rather than code;
// their line counts are excluded from the review fraction.
var weightExtensions = map[string]struct{}{
	".bin":         {},
	".pt":          {},
	".safetensors": {},
	".onnx":        {},
	".h5":          {},
	".tflite":      {},
}

// reviewKeywords mark commit messages that look like reviewed pull
// request merges.
var reviewKeywords = []string{
	"merge pull request",
	"reviewed-by:",
	"code-review+",
	"pull request #",
}

// reviewednessMetric approximates how much of the repository's code went
// through review: the fraction of added code lines introduced by commits
// whose messages look like reviewed PR merges.
type reviewednessMetric struct{}

func (*reviewednessMetric) Name() string { return "reviewedness" }

func (*reviewednessMetric) Compute(_ context.Context, res *Resource) (float64, error) {
	if res.Repo == nil {
		return 0, nil
	}
	commits, err := res.Repo.Commits(maxHistoryCommits)
	if err != nil {
		return 0, nil
	}

	var total, reviewed int
	for _, c := range commits {
		added := 0
		for _, f := range c.Files {
			if isWeightFile(f.Path) {
				continue
			}
			added += f.Added
		}
		total += added
		if isReviewedMessage(c.Message) {
			reviewed += added
		}
	}

	if total == 0 {
		return 0, nil
	}
	return float64(reviewed) / float64(total), nil
}

func isWeightFile(p string) bool {
	_, ok := weightExtensions[path.Ext(p)]
	return ok
}

func isReviewedMessage(message string) bool {
	low := strings.ToLower(message)
	for _, kw := range reviewKeywords {
		if strings.Contains(low, kw) {
			return true
		}
	}
	return false
}
