package scoring

import (
	"context"
	"log/slog"

	"github.com/trustmodel/registry-server/internal/artifact"
	"github.com/trustmodel/registry-server/internal/gitrepo"
	"github.com/trustmodel/registry-server/internal/hub"
	"github.com/trustmodel/registry-server/internal/links"
)

// Resolver gathers the scoring context for a URL: hub metadata, README
// text, and a clone of the associated source repository. Every step is
// best effort; a resource with missing context still gets scored, just
// lower.
type Resolver struct {
	hub hub.Client
	git gitrepo.Client
}

// NewResolver builds a resolver over the given hub and git clients.
func NewResolver(hubClient hub.Client, gitClient gitrepo.Client) *Resolver {
	return &Resolver{hub: hubClient, git: gitClient}
}

// Resolve classifies the URL and gathers whatever context can be
// fetched for it. The returned resource always has URL, Name, and
// Category set. Call Release when done to free the clone.
func (r *Resolver) Resolve(ctx context.Context, url string) *Resource {
	category := artifact.Classify(url)
	res := &Resource{
		URL:      url,
		Name:     artifact.NameFromURL(url),
		Category: category,
		Hub:      r.hub,
	}

	switch category {
	case artifact.CategoryModel:
		r.resolveModel(ctx, res)
	case artifact.CategoryDataset:
		r.resolveDataset(ctx, res)
	default:
		r.resolveCode(ctx, res)
	}
	return res
}

// Release frees the in-memory clone held by a resolved resource.
func (r *Resolver) Release(ctx context.Context, res *Resource) {
	if res == nil || res.Repo == nil {
		return
	}
	if err := r.git.Cleanup(ctx, res.Repo); err != nil {
		slog.DebugContext(ctx, "Failed to release repository", "url", res.URL, "error", err)
	}
	res.Repo = nil
}

func (r *Resolver) resolveModel(ctx context.Context, res *Resource) {
	if r.hub != nil {
		info, err := r.hub.GetModelInfo(ctx, res.Name)
		if err != nil {
			slog.DebugContext(ctx, "Failed to fetch model info", "model", res.Name, "error", err)
		} else {
			res.Model = info
			res.ParentNames = info.CardData.BaseModel
		}

		readme, err := r.hub.GetModelReadme(ctx, res.Name)
		if err != nil {
			slog.DebugContext(ctx, "Failed to fetch model readme", "model", res.Name, "error", err)
		} else {
			res.Readme = readme
		}
	}

	// The model's source code lives wherever the card points.
	if repoURL, ok := links.FindGitHubURL(res.Readme); ok {
		res.Repo = r.clone(ctx, repoURL)
	}
}

func (r *Resolver) resolveDataset(ctx context.Context, res *Resource) {
	if r.hub == nil {
		return
	}
	info, err := r.hub.GetDatasetInfo(ctx, res.Name)
	if err != nil {
		slog.DebugContext(ctx, "Failed to fetch dataset info", "dataset", res.Name, "error", err)
	} else {
		res.Dataset = info
	}

	readme, err := r.hub.GetDatasetReadme(ctx, res.Name)
	if err != nil {
		slog.DebugContext(ctx, "Failed to fetch dataset readme", "dataset", res.Name, "error", err)
	} else {
		res.Readme = readme
	}
}

func (r *Resolver) resolveCode(ctx context.Context, res *Resource) {
	res.Repo = r.clone(ctx, res.URL)
	if res.Readme == "" && res.Repo != nil {
		res.Readme, _ = res.Repo.Readme()
	}
}

func (r *Resolver) clone(ctx context.Context, url string) *gitrepo.Repository {
	if r.git == nil {
		return nil
	}
	repo, err := r.git.Clone(ctx, url, gitrepo.CloneOptions{})
	if err != nil {
		slog.DebugContext(ctx, "Failed to clone repository", "url", url, "error", err)
		return nil
	}
	return repo
}
