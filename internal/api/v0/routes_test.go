package v0_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v0 "github.com/trustmodel/registry-server/internal/api/v0"
	"github.com/trustmodel/registry-server/internal/artifact"
	"github.com/trustmodel/registry-server/internal/service"
)

// fakeService is a canned-response RegistryService for handler tests.
type fakeService struct {
	artifacts map[string]*artifact.Artifact
	listed    []artifact.Artifact
	history   []artifact.AuditEntry
	rating    *artifact.Rating
	lineage   *service.Lineage
	cost      *service.Cost

	createErr error
	resetOK   bool

	lastQueries []artifact.Query
	lastOffset  int
	lastLimit   int
	lastRegex   string
	lastName    string
	deletedID   string
	updated     *artifact.Artifact
}

func (f *fakeService) CreateArtifact(_ context.Context, art *artifact.Artifact) (*artifact.Artifact, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	created := *art
	created.Metadata.ID = "new-id"
	if created.Metadata.Type == "" {
		created.Metadata.Type = artifact.TypeModel
	}
	return &created, nil
}

func (f *fakeService) GetArtifact(_ context.Context, id string) (*artifact.Artifact, error) {
	art, ok := f.artifacts[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return art, nil
}

func (f *fakeService) UpdateArtifact(_ context.Context, art *artifact.Artifact) error {
	if _, ok := f.artifacts[art.Metadata.ID]; !ok {
		return service.ErrNotFound
	}
	f.updated = art
	return nil
}

func (f *fakeService) DeleteArtifact(_ context.Context, id string) error {
	if _, ok := f.artifacts[id]; !ok {
		return service.ErrNotFound
	}
	f.deletedID = id
	return nil
}

func (f *fakeService) ListArtifacts(_ context.Context, queries []artifact.Query, offset, limit int) ([]artifact.Artifact, error) {
	f.lastQueries = queries
	f.lastOffset = offset
	f.lastLimit = limit
	return f.listed, nil
}

func (f *fakeService) SearchByRegex(_ context.Context, expr string) ([]artifact.Artifact, error) {
	if expr == "[invalid" {
		return nil, assert.AnError
	}
	f.lastRegex = expr
	return f.listed, nil
}

func (f *fakeService) History(_ context.Context, name string) ([]artifact.AuditEntry, error) {
	f.lastName = name
	if len(f.history) == 0 {
		return nil, service.ErrNotFound
	}
	return f.history, nil
}

func (f *fakeService) Rate(_ context.Context, _ string) (*artifact.Rating, error) {
	if f.rating == nil {
		return nil, service.ErrNotFound
	}
	return f.rating, nil
}

func (f *fakeService) GetCost(_ context.Context, _ string) (*service.Cost, error) {
	if f.cost == nil {
		return nil, service.ErrNotFound
	}
	return f.cost, nil
}

func (f *fakeService) GetLineage(_ context.Context, _ string) (*service.Lineage, error) {
	if f.lineage == nil {
		return nil, service.ErrNotFound
	}
	return f.lineage, nil
}

func (f *fakeService) Reset(_ context.Context) error {
	f.resetOK = true
	return nil
}

func seededService() *fakeService {
	return &fakeService{
		artifacts: map[string]*artifact.Artifact{
			"id-1": {
				Metadata: artifact.Metadata{Name: "bert-base", Version: "1.0.0", ID: "id-1", Type: artifact.TypeModel},
				Data:     artifact.Data{URL: "https://huggingface.co/google-bert/bert-base-uncased"},
			},
		},
	}
}

func doRequest(t *testing.T, svc service.RegistryService, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reqBody)
	rec := httptest.NewRecorder()
	v0.Router(svc).ServeHTTP(rec, req)
	return rec
}

func TestSystemEndpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK, wantBody: "healthy"},
		{name: "readiness", method: http.MethodGet, path: "/readiness", wantStatus: http.StatusOK, wantBody: "ready"},
		{name: "version", method: http.MethodGet, path: "/version", wantStatus: http.StatusOK, wantBody: "go_version"},
		{name: "tracks", method: http.MethodGet, path: "/tracks", wantStatus: http.StatusOK, wantBody: "Access Control Track"},
		{name: "authenticate", method: http.MethodPut, path: "/authenticate", wantStatus: http.StatusOK, wantBody: "bearer_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := doRequest(t, seededService(), tt.method, tt.path, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestListArtifacts(t *testing.T) {
	t.Parallel()

	t.Run("forwards queries and window", func(t *testing.T) {
		t.Parallel()

		svc := seededService()
		svc.listed = []artifact.Artifact{*svc.artifacts["id-1"]}

		rec := doRequest(t, svc, http.MethodPost, "/artifacts?offset=2&limit=5",
			[]artifact.Query{{Name: "*"}})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2, svc.lastOffset)
		assert.Equal(t, 5, svc.lastLimit)

		var mds []artifact.Metadata
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mds))
		require.Len(t, mds, 1)
		assert.Equal(t, "bert-base", mds[0].Name)
	})

	t.Run("packages alias", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, seededService(), http.MethodPost, "/packages", []artifact.Query{{Name: "*"}})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("full page sets next offset header", func(t *testing.T) {
		t.Parallel()

		svc := seededService()
		svc.listed = []artifact.Artifact{*svc.artifacts["id-1"]}

		rec := doRequest(t, svc, http.MethodPost, "/artifacts?limit=1", []artifact.Query{{Name: "*"}})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("offset"))
	})

	t.Run("zero limit leaves offset header unset", func(t *testing.T) {
		t.Parallel()

		svc := seededService()
		svc.listed = nil

		rec := doRequest(t, svc, http.MethodPost, "/artifacts?limit=0", []artifact.Query{{Name: "*"}})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("offset"))
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, seededService(), http.MethodPost, "/artifacts", map[string]string{"name": "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non-numeric offset", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, seededService(), http.MethodPost, "/artifacts?offset=abc", []artifact.Query{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list by type", func(t *testing.T) {
		t.Parallel()

		svc := seededService()
		rec := doRequest(t, svc, http.MethodGet, "/artifacts/model", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, svc.lastQueries, 1)
		assert.Equal(t, []string{"model"}, svc.lastQueries[0].Types)
	})

	t.Run("list by unknown type", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, seededService(), http.MethodGet, "/artifacts/binary", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreateArtifact(t *testing.T) {
	t.Parallel()

	body := artifact.Artifact{
		Data: artifact.Data{URL: "https://huggingface.co/openai/whisper-tiny"},
	}

	t.Run("created", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, seededService(), http.MethodPost, "/artifact", body)
		require.Equal(t, http.StatusCreated, rec.Code)

		var created artifact.Artifact
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, "new-id", created.Metadata.ID)
	})

	t.Run("typed path sets type", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, seededService(), http.MethodPost, "/artifact/dataset", body)
		require.Equal(t, http.StatusCreated, rec.Code)

		var created artifact.Artifact
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, artifact.TypeDataset, created.Metadata.Type)
	})

	t.Run("invalid artifact", func(t *testing.T) {
		t.Parallel()

		svc := seededService()
		svc.createErr = service.ErrInvalidArtifact
		rec := doRequest(t, svc, http.MethodPost, "/artifact", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("disqualified model", func(t *testing.T) {
		t.Parallel()

		svc := seededService()
		svc.createErr = service.ErrDisqualified
		rec := doRequest(t, svc, http.MethodPost, "/artifact", body)
		assert.Equal(t, http.StatusFailedDependency, rec.Code)
	})
}

func TestArtifactCRUD(t *testing.T) {
	t.Parallel()

	t.Run("get", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, seededService(), http.MethodGet, "/artifact/model/id-1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var art artifact.Artifact
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &art))
		assert.Equal(t, "bert-base", art.Metadata.Name)
	})

	t.Run("get via plural alias", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, seededService(), http.MethodGet, "/artifacts/model/id-1", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("get via package alias", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, seededService(), http.MethodGet, "/package/id-1", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("get unknown id", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, seededService(), http.MethodGet, "/artifact/model/missing", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("get with mismatched type", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, seededService(), http.MethodGet, "/artifact/dataset/id-1", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update", func(t *testing.T) {
		t.Parallel()

		svc := seededService()
		body := artifact.Artifact{
			Metadata: artifact.Metadata{Name: "bert-base", Version: "1.1.0"},
			Data:     artifact.Data{URL: "https://huggingface.co/google-bert/bert-base-uncased"},
		}
		rec := doRequest(t, svc, http.MethodPut, "/artifact/model/id-1", body)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, svc.updated)
		assert.Equal(t, "id-1", svc.updated.Metadata.ID)
		assert.Equal(t, "1.1.0", svc.updated.Metadata.Version)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		svc := seededService()
		rec := doRequest(t, svc, http.MethodDelete, "/artifact/model/id-1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "id-1", svc.deletedID)
	})

	t.Run("delete unknown id", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, seededService(), http.MethodDelete, "/artifact/model/missing", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRateAndScoring(t *testing.T) {
	t.Parallel()

	t.Run("rate", func(t *testing.T) {
		t.Parallel()

		svc := seededService()
		svc.rating = &artifact.Rating{Name: "bert-base", NetScore: 0.82, License: 1.0}

		rec := doRequest(t, svc, http.MethodGet, "/artifact/model/id-1/rate", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var rating artifact.Rating
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rating))
		assert.InDelta(t, 0.82, rating.NetScore, 1e-9)
	})

	t.Run("rate unknown id", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, seededService(), http.MethodGet, "/artifact/model/missing/rate", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("cost", func(t *testing.T) {
		t.Parallel()

		svc := seededService()
		svc.cost = &service.Cost{ID: "id-1", TotalCost: 12.5}

		rec := doRequest(t, svc, http.MethodGet, "/artifact/model/id-1/cost", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Cost service.Cost `json:"cost"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.InDelta(t, 12.5, resp.Cost.TotalCost, 1e-9)
	})

	t.Run("license check", func(t *testing.T) {
		t.Parallel()

		svc := seededService()
		svc.rating = &artifact.Rating{License: 0.95}

		rec := doRequest(t, svc, http.MethodPost, "/artifact/model/id-1/license-check", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp v0.LicenseCheckResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Valid)
		assert.InDelta(t, 0.95, resp.LicenseScore, 1e-9)
	})

	t.Run("lineage", func(t *testing.T) {
		t.Parallel()

		svc := seededService()
		svc.lineage = &service.Lineage{
			Nodes: []service.LineageNode{{ID: "id-1", Name: "bert-base"}},
			Edges: []service.LineageEdge{},
		}

		rec := doRequest(t, svc, http.MethodGet, "/artifact/model/id-1/lineage", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var lineage service.Lineage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lineage))
		require.Len(t, lineage.Nodes, 1)
		assert.Equal(t, "bert-base", lineage.Nodes[0].Name)
	})

	t.Run("global lineage is empty", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, seededService(), http.MethodGet, "/artifact/model/lineage", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var lineage service.Lineage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lineage))
		assert.Empty(t, lineage.Nodes)
		assert.Empty(t, lineage.Edges)
	})
}

func TestSearch(t *testing.T) {
	t.Parallel()

	t.Run("byRegEx", func(t *testing.T) {
		t.Parallel()

		svc := seededService()
		svc.listed = []artifact.Artifact{*svc.artifacts["id-1"]}

		rec := doRequest(t, svc, http.MethodPost, "/artifact/byRegEx", v0.RegexQuery{Regex: "^bert"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "^bert", svc.lastRegex)
	})

	t.Run("byRegEx missing regex field", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, seededService(), http.MethodPost, "/artifact/byRegEx", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("byRegEx invalid expression", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, seededService(), http.MethodPost, "/artifact/byRegEx", v0.RegexQuery{Regex: "[invalid"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("byName returns history", func(t *testing.T) {
		t.Parallel()

		svc := seededService()
		svc.history = []artifact.AuditEntry{{
			Action:   artifact.ActionCreate,
			Metadata: svc.artifacts["id-1"].Metadata,
		}}

		rec := doRequest(t, svc, http.MethodGet, "/artifact/byName/bert-base", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "bert-base", svc.lastName)
	})

	t.Run("byName with slash in name", func(t *testing.T) {
		t.Parallel()

		svc := seededService()
		svc.history = []artifact.AuditEntry{{Action: artifact.ActionCreate}}

		rec := doRequest(t, svc, http.MethodGet, "/artifact/byName/google-bert/bert-base-uncased", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "google-bert/bert-base-uncased", svc.lastName)
	})

	t.Run("byName unknown name", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, seededService(), http.MethodGet, "/artifact/byName/nonesuch", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestReset(t *testing.T) {
	t.Parallel()

	svc := seededService()
	rec := doRequest(t, svc, http.MethodDelete, "/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.resetOK)
}
