package scoring

import (
	"github.com/trustmodel/registry-server/internal/artifact"
	"github.com/trustmodel/registry-server/internal/gitrepo"
	"github.com/trustmodel/registry-server/internal/hub"
)

// Resource is the unit of scoring: one URL-identified artifact together
// with whatever context the resolution layer managed to gather for it.
// Any field other than URL may be zero; metrics degrade when the context
// they need is missing.
type Resource struct {
	// URL is the artifact's source URL.
	URL string

	// Name is the canonical artifact name derived from the URL, such as
	// "google-bert/bert-base-uncased" or "owner/repo".
	Name string

	// Category classifies the resource as MODEL, DATASET, or CODE.
	Category artifact.Category

	// Readme is the resolved README or model card text, empty when none
	// could be fetched.
	Readme string

	// Model holds hub metadata for MODEL resources.
	Model *hub.ModelInfo

	// Dataset holds hub metadata for DATASET resources.
	Dataset *hub.DatasetInfo

	// Repo is the cloned source repository, nil when cloning failed or
	// no repository could be located.
	Repo *gitrepo.Repository

	// Hub is used by metrics that look up additional hub entities, such
	// as the datasets referenced by a model card.
	Hub hub.Client

	// ParentNames are the hub ids of the resource's parent models, from
	// base_model card references.
	ParentNames []string

	// ParentNetScores are the recorded net scores of those parents that
	// have already been rated.
	ParentNetScores []float64
}
