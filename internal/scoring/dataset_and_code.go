package scoring

import (
	"context"

	"github.com/trustmodel/registry-server/internal/artifact"
	"github.com/trustmodel/registry-server/internal/links"
)

// datasetAndCodeMetric scores whether a model's documentation links both
// the data it was trained on and the code that produced it: 1.0 for
// both, 0.5 for one, 0 for neither. Only hub-hosted resources can carry
// such links.
type datasetAndCodeMetric struct{}

func (*datasetAndCodeMetric) Name() string { return "dataset_and_code_score" }

func (*datasetAndCodeMetric) Compute(_ context.Context, res *Resource) (float64, error) {
	if res.Category == artifact.CategoryCode {
		return 0, nil
	}

	hasDataset := len(datasetCandidates(res)) > 0
	_, hasCode := links.FindGitHubURL(res.Readme)

	switch {
	case hasDataset && hasCode:
		return 1.0, nil
	case hasDataset || hasCode:
		return 0.5, nil
	default:
		return 0, nil
	}
}

// datasetCandidates collects dataset references for a resource from its
// card front matter and README links.
func datasetCandidates(res *Resource) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	if res.Model != nil {
		for _, id := range res.Model.CardData.Datasets {
			add(id)
		}
	}
	for _, link := range links.FindDatasetLinks(res.Readme) {
		if id, ok := links.DatasetID(link); ok {
			add(id)
		}
	}
	return out
}
