package artifact

import "strings"

// Category is the coarse resource class used by the scoring layer.
type Category string

const (
	// CategoryModel marks Hugging Face model pages.
	CategoryModel Category = "MODEL"

	// CategoryDataset marks Hugging Face dataset pages.
	CategoryDataset Category = "DATASET"

	// CategoryCode marks git-hosted source repositories and anything else.
	CategoryCode Category = "CODE"
)

// Type maps a category to the artifact type stored in metadata.
func (c Category) Type() Type {
	switch c {
	case CategoryModel:
		return TypeModel
	case CategoryDataset:
		return TypeDataset
	default:
		return TypeCode
	}
}

var codeHosts = []string{"github.com", "gitlab.com", "bitbucket.org"}

// Classify assigns a category to a URL by substring matching on the host.
// Hugging Face dataset pages are DATASET, other Hugging Face pages are
// MODEL, git hosts are CODE, and everything else defaults to CODE.
func Classify(url string) Category {
	u := strings.ToLower(strings.TrimSpace(url))
	if u == "" {
		return CategoryCode
	}

	if strings.Contains(u, "huggingface.co") {
		if strings.Contains(u, "/datasets/") {
			return CategoryDataset
		}
		return CategoryModel
	}

	for _, host := range codeHosts {
		if strings.Contains(u, host) {
			return CategoryCode
		}
	}
	return CategoryCode
}

// NameFromURL derives the canonical artifact name from its URL:
// "owner/repo" for GitHub repositories, the hub path for Hugging Face
// pages, and the trimmed URL otherwise.
func NameFromURL(url string) string {
	u := strings.TrimRight(strings.TrimSpace(url), "/")
	if u == "" {
		return ""
	}

	if strings.Contains(u, "github.com") {
		parts := strings.Split(u, "/")
		if len(parts) >= 2 {
			repo := strings.TrimSuffix(parts[len(parts)-1], ".git")
			return parts[len(parts)-2] + "/" + repo
		}
	}

	if idx := strings.Index(u, "huggingface.co/"); idx >= 0 {
		path := u[idx+len("huggingface.co/"):]
		path = strings.TrimPrefix(path, "datasets/")
		return strings.TrimRight(path, "/")
	}

	return u
}
