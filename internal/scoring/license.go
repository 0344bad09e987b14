package scoring

import (
	"context"
	"strings"

	"github.com/google/go-github/v83/github"
)

var licenseFiles = []string{"LICENSE", "LICENSE.txt", "LICENSE.md", "LICENSE.rst", "COPYING"}

// licenseKeywords maps license keywords to compatibility scores, in
// match-priority order. lgpl must be checked before gpl.
var licenseKeywords = []struct {
	keyword string
	score   float64
}{
	{"mit", 1.0},
	{"apache", 0.95},
	{"bsd", 0.9},
	{"lgpl", 0.6},
	{"gpl", 0.4},
	{"mozilla", 0.8},
	{"mpl", 0.8},
	{"proprietary", 0.0},
}

// licenseMetric scores license compatibility for reuse. It prefers a
// LICENSE file from the clone, then the README or model card text, and
// finally the repository's declared license from the GitHub API.
type licenseMetric struct {
	github *github.Client
}

func (*licenseMetric) Name() string { return "license" }

func (m *licenseMetric) Compute(ctx context.Context, res *Resource) (float64, error) {
	if res.Repo != nil {
		if text, ok := res.Repo.ReadFirst(licenseFiles...); ok {
			return licenseScoreFromText(text), nil
		}
		if text, ok := res.Repo.Readme(); ok {
			return licenseScoreFromText(text), nil
		}
	}

	if res.Model != nil && res.Model.CardData.License != "" {
		return licenseScoreFromText(res.Model.CardData.License), nil
	}
	if res.Readme != "" {
		return licenseScoreFromText(res.Readme), nil
	}

	if spdx, ok := m.declaredLicense(ctx, res.URL); ok {
		return licenseScoreFromText(spdx), nil
	}
	return 0, nil
}

// declaredLicense asks the GitHub API for the repository's detected
// license SPDX identifier.
func (m *licenseMetric) declaredLicense(ctx context.Context, url string) (string, bool) {
	if m.github == nil {
		return "", false
	}
	owner, repo, ok := splitGitHubURL(url)
	if !ok {
		return "", false
	}

	repository, _, err := m.github.Repositories.Get(ctx, owner, repo)
	if err != nil || repository.License == nil {
		return "", false
	}
	return repository.License.GetSPDXID(), true
}

func splitGitHubURL(url string) (owner, repo string, ok bool) {
	idx := strings.Index(url, "github.com/")
	if idx < 0 {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(url[idx+len("github.com/"):], "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), true
}

// licenseScoreFromText maps license or README text to a score via
// keyword matching. Text that reserves rights without naming a known
// license scores 0.
func licenseScoreFromText(text string) float64 {
	if text == "" {
		return 0
	}
	low := strings.ToLower(text)
	for _, entry := range licenseKeywords {
		if strings.Contains(low, entry.keyword) {
			return entry.score
		}
	}
	return 0
}
