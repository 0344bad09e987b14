package artifact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trustmodel/registry-server/internal/artifact"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		url      string
		expected artifact.Category
	}{
		{
			name:     "hugging face model page",
			url:      "https://huggingface.co/google/gemma-2b",
			expected: artifact.CategoryModel,
		},
		{
			name:     "hugging face dataset page",
			url:      "https://huggingface.co/datasets/squad",
			expected: artifact.CategoryDataset,
		},
		{
			name:     "github repository",
			url:      "https://github.com/pytorch/pytorch",
			expected: artifact.CategoryCode,
		},
		{
			name:     "gitlab repository",
			url:      "https://gitlab.com/group/project",
			expected: artifact.CategoryCode,
		},
		{
			name:     "bitbucket repository",
			url:      "https://bitbucket.org/team/repo",
			expected: artifact.CategoryCode,
		},
		{
			name:     "unknown host defaults to code",
			url:      "https://example.com/something",
			expected: artifact.CategoryCode,
		},
		{
			name:     "empty url defaults to code",
			url:      "",
			expected: artifact.CategoryCode,
		},
		{
			name:     "case insensitive host match",
			url:      "https://HuggingFace.co/bert-base-uncased",
			expected: artifact.CategoryModel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, artifact.Classify(tt.url))
		})
	}
}

func TestNameFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "github owner and repo",
			url:      "https://github.com/pytorch/pytorch",
			expected: "pytorch/pytorch",
		},
		{
			name:     "github trailing slash and git suffix",
			url:      "https://github.com/owner/repo.git/",
			expected: "owner/repo",
		},
		{
			name:     "hugging face model path",
			url:      "https://huggingface.co/google/gemma-2b",
			expected: "google/gemma-2b",
		},
		{
			name:     "hugging face dataset path",
			url:      "https://huggingface.co/datasets/squad",
			expected: "squad",
		},
		{
			name:     "empty url",
			url:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, artifact.NameFromURL(tt.url))
		})
	}
}

func TestDataValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    artifact.Data
		wantErr bool
	}{
		{
			name: "url only is valid",
			data: artifact.Data{URL: "https://huggingface.co/bert-base-uncased"},
		},
		{
			name: "content only is valid",
			data: artifact.Data{Content: "UEsDBA=="},
		},
		{
			name:    "both set is invalid",
			data:    artifact.Data{URL: "https://example.com", Content: "UEsDBA=="},
			wantErr: true,
		},
		{
			name:    "neither set is invalid",
			data:    artifact.Data{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.data.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQueryMatches(t *testing.T) {
	t.Parallel()

	md := artifact.Metadata{Name: "bert-base-uncased", Version: "1.0.0", ID: "abc", Type: artifact.TypeModel}

	tests := []struct {
		name     string
		query    artifact.Query
		expected bool
	}{
		{
			name:     "wildcard matches everything",
			query:    artifact.Query{Name: "*"},
			expected: true,
		},
		{
			name:     "exact name match",
			query:    artifact.Query{Name: "bert-base-uncased"},
			expected: true,
		},
		{
			name:     "name mismatch",
			query:    artifact.Query{Name: "other"},
			expected: false,
		},
		{
			name:     "version filter",
			query:    artifact.Query{Name: "*", Version: "2.0.0"},
			expected: false,
		},
		{
			name:     "type filter matches case-insensitively",
			query:    artifact.Query{Name: "*", Types: []string{"MODEL"}},
			expected: true,
		},
		{
			name:     "type filter excludes",
			query:    artifact.Query{Name: "*", Types: []string{"code", "dataset"}},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.query.Matches(&md))
		})
	}
}
