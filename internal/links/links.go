// Package links extracts repository and dataset references from model
// card text.
package links

import (
	"regexp"
	"strings"
)

var (
	urlPattern        = regexp.MustCompile(`https?://[^\s)\]"'<>]+`)
	githubRepoPattern = regexp.MustCompile(`^https?://(?:www\.)?github\.com/([\w.-]+)/([\w.-]+)`)
	hfDatasetPattern  = regexp.MustCompile(`^https?://(?:www\.)?huggingface\.co/datasets/([\w.-]+)/([\w.-]+)`)
)

// FindGitHubURL returns the first GitHub repository link in the text,
// normalized to https://github.com/{owner}/{repo}.
func FindGitHubURL(text string) (string, bool) {
	for _, raw := range urlPattern.FindAllString(text, -1) {
		m := githubRepoPattern.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		repo := strings.TrimSuffix(m[2], ".git")
		return "https://github.com/" + m[1] + "/" + repo, true
	}
	return "", false
}

// FindDatasetLinks returns all Hugging Face dataset links in the text,
// normalized to https://huggingface.co/datasets/{owner}/{name} and
// deduplicated in order of first appearance.
func FindDatasetLinks(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, raw := range urlPattern.FindAllString(text, -1) {
		m := hfDatasetPattern.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		link := "https://huggingface.co/datasets/" + m[1] + "/" + strings.TrimSuffix(m[2], ".git")
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
	}
	return out
}

// DatasetID extracts the {owner}/{name} identifier from a Hugging Face
// dataset URL.
func DatasetID(url string) (string, bool) {
	m := hfDatasetPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1] + "/" + m[2], true
}
