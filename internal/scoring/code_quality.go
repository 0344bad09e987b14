package scoring

import "context"

// codeQualityMetric scores a repository by the presence of basic
// engineering hygiene markers: a dependency manifest, a test directory,
// CI configuration, and a Dockerfile. The score is the fraction of
// markers present.
type codeQualityMetric struct{}

func (*codeQualityMetric) Name() string { return "code_quality" }

func (*codeQualityMetric) Compute(_ context.Context, res *Resource) (float64, error) {
	if res.Repo == nil {
		return 0, nil
	}

	checks := []bool{
		res.Repo.HasFile("requirements.txt") ||
			res.Repo.HasFile("pyproject.toml") ||
			res.Repo.HasFile("go.mod") ||
			res.Repo.HasFile("package.json"),
		res.Repo.HasDir("tests"),
		res.Repo.HasDir(".github") || res.Repo.HasFile(".gitlab-ci.yml"),
		res.Repo.HasFile("Dockerfile"),
	}

	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	return float64(passed) / float64(len(checks)), nil
}
