// Package hub provides a client for the Hugging Face Hub API. It exposes
// the small slice of the API that the scoring layer needs: model and
// dataset metadata plus raw README retrieval.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/trustmodel/registry-server/internal/httpclient"
)

// DefaultEndpoint is the public Hugging Face Hub endpoint.
const DefaultEndpoint = "https://huggingface.co"

// readmeBranches are tried in order when fetching a raw README.
var readmeBranches = []string{"main", "master"}

// ModelInfo is the subset of hub model metadata used for scoring.
type ModelInfo struct {
	ID          string   `json:"id"`
	PipelineTag string   `json:"pipeline_tag"`
	Downloads   int64    `json:"downloads"`
	Likes       int64    `json:"likes"`
	Tags        []string `json:"tags"`
	CardData    CardData `json:"cardData"`
	Siblings    []struct {
		Rfilename string `json:"rfilename"`
	} `json:"siblings"`
	UsedStorage int64 `json:"usedStorage"`
}

// DatasetInfo is the subset of hub dataset metadata used for scoring.
type DatasetInfo struct {
	ID        string   `json:"id"`
	Downloads int64    `json:"downloads"`
	Likes     int64    `json:"likes"`
	CardData  CardData `json:"cardData"`
}

// CardData holds fields from the YAML front matter of a model or dataset
// card. BaseModel and Datasets accept both scalar and list forms.
type CardData struct {
	License    string     `json:"license"`
	BaseModel  StringList `json:"base_model"`
	Datasets   StringList `json:"datasets"`
	CardExists bool       `json:"-"`
}

// cardDataAlias avoids recursion when unmarshalling CardData.
type cardDataAlias CardData

// UnmarshalJSON records whether card data was present at all, which the
// dataset quality metric treats as a signal in itself.
func (c *CardData) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var alias cardDataAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*c = CardData(alias)
	c.CardExists = true
	return nil
}

// StringList is a JSON value that may be a single string or a list of
// strings; hub card data uses both forms interchangeably.
type StringList []string

// UnmarshalJSON accepts either a scalar string or an array of strings.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single != "" {
			*s = []string{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// Client fetches model and dataset metadata from the hub.
type Client interface {
	// GetModelInfo retrieves metadata for the model with the given hub id.
	GetModelInfo(ctx context.Context, modelID string) (*ModelInfo, error)

	// GetDatasetInfo retrieves metadata for the dataset with the given hub id.
	GetDatasetInfo(ctx context.Context, datasetID string) (*DatasetInfo, error)

	// GetModelReadme retrieves the raw README for a model, trying the main
	// and master branches in order.
	GetModelReadme(ctx context.Context, modelID string) (string, error)

	// GetDatasetReadme retrieves the raw README for a dataset.
	GetDatasetReadme(ctx context.Context, datasetID string) (string, error)
}

// defaultClient implements Client against the hub REST API.
type defaultClient struct {
	endpoint string
	http     httpclient.Client
}

// Option configures the hub client.
type Option func(*defaultClient)

// WithEndpoint overrides the hub endpoint, mainly for tests.
func WithEndpoint(endpoint string) Option {
	return func(c *defaultClient) {
		if endpoint != "" {
			c.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *defaultClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient creates a hub client with the given options.
func NewClient(opts ...Option) Client {
	c := &defaultClient{
		endpoint: DefaultEndpoint,
		http:     httpclient.NewDefaultClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetModelInfo retrieves metadata for a model.
func (c *defaultClient) GetModelInfo(ctx context.Context, modelID string) (*ModelInfo, error) {
	url := fmt.Sprintf("%s/api/models/%s", c.endpoint, modelID)
	body, err := c.http.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch model info for %s: %w", modelID, err)
	}

	var info ModelInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse model info for %s: %w", modelID, err)
	}
	return &info, nil
}

// GetDatasetInfo retrieves metadata for a dataset.
func (c *defaultClient) GetDatasetInfo(ctx context.Context, datasetID string) (*DatasetInfo, error) {
	url := fmt.Sprintf("%s/api/datasets/%s", c.endpoint, datasetID)
	body, err := c.http.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset info for %s: %w", datasetID, err)
	}

	var info DatasetInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse dataset info for %s: %w", datasetID, err)
	}
	return &info, nil
}

// GetModelReadme retrieves the raw README for a model.
func (c *defaultClient) GetModelReadme(ctx context.Context, modelID string) (string, error) {
	return c.getReadme(ctx, modelID)
}

// GetDatasetReadme retrieves the raw README for a dataset.
func (c *defaultClient) GetDatasetReadme(ctx context.Context, datasetID string) (string, error) {
	return c.getReadme(ctx, "datasets/"+datasetID)
}

func (c *defaultClient) getReadme(ctx context.Context, path string) (string, error) {
	var lastErr error
	for _, branch := range readmeBranches {
		url := fmt.Sprintf("%s/%s/raw/%s/README.md", c.endpoint, path, branch)
		body, err := c.http.Get(ctx, url)
		if err == nil && len(strings.TrimSpace(string(body))) > 0 {
			return string(body), nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("empty README")
	}
	return "", fmt.Errorf("failed to fetch README for %s: %w", path, lastErr)
}
