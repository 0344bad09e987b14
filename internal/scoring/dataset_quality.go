package scoring

import (
	"context"
	"strings"

	"github.com/trustmodel/registry-server/internal/artifact"
)

// wellKnownDatasets are dataset names commonly used for training,
// matched against the resource name, URL, and README text.
var wellKnownDatasets = []string{
	"glue", "squad", "squad_v2", "wikitext", "wikipedia", "bookcorpus",
	"imagenet", "coco", "mnist", "cifar10", "cifar100",
	"imdb", "sst2", "mrpc", "qqp", "mnli", "qnli", "rte", "wnli",
	"conll2003", "wmt14", "wmt16", "common_voice", "librispeech",
}

// datasetQualityMetric scores the quality of the datasets a resource
// references. Each candidate dataset earns 0.5 for having a card, 0.3
// for more than a thousand downloads, and 0.2 for more than ten likes;
// the metric reports the best candidate. CODE resources reference no
// datasets and score 0.
type datasetQualityMetric struct{}

func (*datasetQualityMetric) Name() string { return "dataset_quality" }

func (*datasetQualityMetric) Compute(ctx context.Context, res *Resource) (float64, error) {
	if res.Category == artifact.CategoryCode {
		return 0, nil
	}

	if res.Category == artifact.CategoryDataset {
		if res.Dataset == nil {
			return 0, nil
		}
		return scoreDatasetInfo(res.Dataset.CardData.CardExists, res.Dataset.Downloads, res.Dataset.Likes), nil
	}

	candidates := datasetCandidates(res)
	candidates = append(candidates, wellKnownMatches(res)...)
	if len(candidates) == 0 || res.Hub == nil {
		return 0, nil
	}

	best := 0.0
	for _, id := range candidates {
		info, err := res.Hub.GetDatasetInfo(ctx, id)
		if err != nil {
			continue
		}
		if s := scoreDatasetInfo(info.CardData.CardExists, info.Downloads, info.Likes); s > best {
			best = s
		}
	}
	return best, nil
}

func scoreDatasetInfo(hasCard bool, downloads, likes int64) float64 {
	score := 0.0
	if hasCard {
		score += 0.5
	}
	if downloads > 1000 {
		score += 0.3
	}
	if likes > 10 {
		score += 0.2
	}
	return score
}

func wellKnownMatches(res *Resource) []string {
	text := strings.ToLower(res.Name + " " + res.URL + " " + res.Readme)
	var found []string
	for _, ds := range wellKnownDatasets {
		if strings.Contains(text, ds) {
			found = append(found, ds)
		}
	}
	return found
}
