package service

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustmodel/registry-server/internal/artifact"
	"github.com/trustmodel/registry-server/internal/storage"
)

// fakeScorer returns a canned rating and parent list.
type fakeScorer struct {
	rating  artifact.Rating
	parents []string

	lastURL    string
	lastScores map[string]float64
	calls      int
}

func (f *fakeScorer) Score(_ context.Context, url string, knownScores map[string]float64) (*artifact.Rating, []string, error) {
	f.calls++
	f.lastURL = url
	f.lastScores = knownScores
	rating := f.rating
	return &rating, f.parents, nil
}

func newService(t *testing.T, scorer Scorer, opts ...Option) RegistryService {
	t.Helper()
	opts = append(opts, WithClock(func() time.Time {
		return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	}))
	return New(storage.NewMemoryStore(), scorer, opts...)
}

func urlArtifact(url string) *artifact.Artifact {
	return &artifact.Artifact{
		Metadata: artifact.Metadata{Version: "1.0.0"},
		Data:     artifact.Data{URL: url},
	}
}

func TestCreateArtifactIngestion(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{rating: artifact.Rating{NetScore: 0.8}}
	svc := newService(t, scorer)

	created, err := svc.CreateArtifact(context.Background(), urlArtifact("https://huggingface.co/google-bert/bert-base-uncased"))
	require.NoError(t, err)

	assert.NotEmpty(t, created.Metadata.ID)
	assert.Equal(t, artifact.TypeModel, created.Metadata.Type)
	assert.Equal(t, "google-bert/bert-base-uncased", created.Metadata.Name)
	assert.Equal(t, "https://huggingface.co/google-bert/bert-base-uncased", scorer.lastURL)

	rating, err := svc.Rate(context.Background(), created.Metadata.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, rating.NetScore, 1e-9)
	assert.Equal(t, 1, scorer.calls, "rating recorded at create must be reused")
}

func TestCreateArtifactDisqualified(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{rating: artifact.Rating{NetScore: 0.2}}
	svc := newService(t, scorer)

	_, err := svc.CreateArtifact(context.Background(), urlArtifact("https://huggingface.co/someone/bad-model"))
	assert.ErrorIs(t, err, ErrDisqualified)

	arts, err := svc.ListArtifacts(context.Background(), nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, arts, "disqualified artifacts must not be stored")
}

func TestCreateArtifactGateOnlyAppliesToModels(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{rating: artifact.Rating{NetScore: 0.1}}
	svc := newService(t, scorer)

	created, err := svc.CreateArtifact(context.Background(), urlArtifact("https://github.com/openai/whisper"))
	require.NoError(t, err)
	assert.Equal(t, artifact.TypeCode, created.Metadata.Type)
}

func TestCreateArtifactCustomGate(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{rating: artifact.Rating{NetScore: 0.4}}
	svc := newService(t, scorer, WithGateThreshold(0.5))

	_, err := svc.CreateArtifact(context.Background(), urlArtifact("https://huggingface.co/someone/model"))
	assert.ErrorIs(t, err, ErrDisqualified)
}

func TestCreateArtifactUploadSkipsScoring(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{}
	svc := newService(t, scorer)

	content := base64.StdEncoding.EncodeToString([]byte("zip bytes"))
	created, err := svc.CreateArtifact(context.Background(), &artifact.Artifact{
		Metadata: artifact.Metadata{Name: "uploaded-model", Version: "1.0.0"},
		Data:     artifact.Data{Content: content},
	})
	require.NoError(t, err)
	assert.Zero(t, scorer.calls)

	rating, err := svc.Rate(context.Background(), created.Metadata.ID)
	require.NoError(t, err)
	assert.Zero(t, rating.NetScore)
	assert.Zero(t, scorer.calls, "uploads are never scored")
}

func TestCreateArtifactUploadDefaultsToCode(t *testing.T) {
	t.Parallel()

	svc := newService(t, &fakeScorer{})

	content := base64.StdEncoding.EncodeToString([]byte("zip bytes"))
	created, err := svc.CreateArtifact(context.Background(), &artifact.Artifact{
		Metadata: artifact.Metadata{Name: "uploaded"},
		Data:     artifact.Data{Content: content},
	})
	require.NoError(t, err)
	assert.Equal(t, artifact.TypeCode, created.Metadata.Type)

	got, err := svc.GetArtifact(context.Background(), created.Metadata.ID)
	require.NoError(t, err)
	assert.Equal(t, artifact.TypeCode, got.Metadata.Type)
}

func TestCreateArtifactDefaultsVersion(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{rating: artifact.Rating{NetScore: 0.8}}
	svc := newService(t, scorer)

	created, err := svc.CreateArtifact(context.Background(), &artifact.Artifact{
		Data: artifact.Data{URL: "https://huggingface.co/google-bert/bert-base-uncased"},
	})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", created.Metadata.Version)

	content := base64.StdEncoding.EncodeToString([]byte("zip bytes"))
	uploaded, err := svc.CreateArtifact(context.Background(), &artifact.Artifact{
		Metadata: artifact.Metadata{Name: "uploaded"},
		Data:     artifact.Data{Content: content},
	})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", uploaded.Metadata.Version)
}

func TestCreateArtifactInvalidData(t *testing.T) {
	t.Parallel()

	svc := newService(t, &fakeScorer{})

	_, err := svc.CreateArtifact(context.Background(), &artifact.Artifact{
		Data: artifact.Data{Content: "abc", URL: "https://example.com"},
	})
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	_, err = svc.CreateArtifact(context.Background(), &artifact.Artifact{})
	assert.ErrorIs(t, err, ErrInvalidArtifact)
}

func TestCreateArtifactParentScoresFlow(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{rating: artifact.Rating{NetScore: 0.9}}
	svc := newService(t, scorer)

	parent, err := svc.CreateArtifact(context.Background(), urlArtifact("https://huggingface.co/google/bert-large"))
	require.NoError(t, err)

	scorer.parents = []string{"google/bert-large"}
	_, err = svc.CreateArtifact(context.Background(), urlArtifact("https://huggingface.co/someone/bert-finetuned"))
	require.NoError(t, err)

	require.NotNil(t, scorer.lastScores)
	assert.InDelta(t, 0.9, scorer.lastScores[parent.Metadata.Name], 1e-9)
}

func TestUpdateArtifact(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{rating: artifact.Rating{NetScore: 0.8}}
	svc := newService(t, scorer)

	created, err := svc.CreateArtifact(context.Background(), urlArtifact("https://huggingface.co/google-bert/bert-base-uncased"))
	require.NoError(t, err)

	updated := *created
	updated.Metadata.Version = "1.1.0"
	require.NoError(t, svc.UpdateArtifact(context.Background(), &updated))

	got, err := svc.GetArtifact(context.Background(), created.Metadata.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", got.Metadata.Version)

	t.Run("mode change rejected", func(t *testing.T) {
		swapped := *created
		swapped.Data = artifact.Data{Content: base64.StdEncoding.EncodeToString([]byte("zip"))}
		assert.ErrorIs(t, svc.UpdateArtifact(context.Background(), &swapped), ErrInvalidArtifact)
	})

	t.Run("unknown id", func(t *testing.T) {
		missing := *created
		missing.Metadata.ID = "nope"
		assert.ErrorIs(t, svc.UpdateArtifact(context.Background(), &missing), ErrNotFound)
	})
}

func TestDeleteArtifact(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{rating: artifact.Rating{NetScore: 0.8}}
	svc := newService(t, scorer)

	created, err := svc.CreateArtifact(context.Background(), urlArtifact("https://huggingface.co/google-bert/bert-base-uncased"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteArtifact(context.Background(), created.Metadata.ID))
	_, err = svc.GetArtifact(context.Background(), created.Metadata.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteArtifact(context.Background(), created.Metadata.ID), ErrNotFound)
}

func TestHistory(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{rating: artifact.Rating{NetScore: 0.8}}
	svc := newService(t, scorer)

	created, err := svc.CreateArtifact(context.Background(), urlArtifact("https://huggingface.co/google-bert/bert-base-uncased"))
	require.NoError(t, err)

	updated := *created
	updated.Metadata.Version = "1.1.0"
	require.NoError(t, svc.UpdateArtifact(context.Background(), &updated))

	entries, err := svc.History(context.Background(), created.Metadata.Name)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, artifact.ActionCreate, entries[0].Action)
	assert.Equal(t, artifact.ActionUpdate, entries[1].Action)
	assert.Equal(t, "2025-03-01T12:00:00Z", entries[0].Date)
	assert.Equal(t, "admin", entries[0].User.Name)

	_, err = svc.History(context.Background(), "never-registered")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCost(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{rating: artifact.Rating{NetScore: 0.8}}
	svc := newService(t, scorer)

	t.Run("upload cost is decoded size", func(t *testing.T) {
		t.Parallel()

		payload := []byte("0123456789")
		created, err := svc.CreateArtifact(context.Background(), &artifact.Artifact{
			Metadata: artifact.Metadata{Name: "uploaded", Version: "1.0.0"},
			Data:     artifact.Data{Content: base64.StdEncoding.EncodeToString(payload)},
		})
		require.NoError(t, err)

		cost, err := svc.GetCost(context.Background(), created.Metadata.ID)
		require.NoError(t, err)
		assert.InDelta(t, float64(len(payload)), cost.TotalCost, 1e-9)
	})

	t.Run("url ingestion costs zero", func(t *testing.T) {
		t.Parallel()

		created, err := svc.CreateArtifact(context.Background(), urlArtifact("https://huggingface.co/google-bert/bert-base-uncased"))
		require.NoError(t, err)

		cost, err := svc.GetCost(context.Background(), created.Metadata.ID)
		require.NoError(t, err)
		assert.Zero(t, cost.TotalCost)
	})
}

func TestGetLineage(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{rating: artifact.Rating{NetScore: 0.9}}
	svc := newService(t, scorer)

	parent, err := svc.CreateArtifact(context.Background(), urlArtifact("https://huggingface.co/google/bert-large"))
	require.NoError(t, err)

	scorer.parents = []string{"google/bert-large", "unregistered/base"}
	child, err := svc.CreateArtifact(context.Background(), urlArtifact("https://huggingface.co/someone/bert-finetuned"))
	require.NoError(t, err)

	lineage, err := svc.GetLineage(context.Background(), child.Metadata.ID)
	require.NoError(t, err)

	require.Len(t, lineage.Nodes, 3)
	assert.Equal(t, child.Metadata.ID, lineage.Nodes[0].ID)
	assert.Equal(t, parent.Metadata.ID, lineage.Nodes[1].ID)
	assert.Empty(t, lineage.Nodes[2].ID, "unregistered parent has no id")

	require.Len(t, lineage.Edges, 2)
	assert.Equal(t, "google/bert-large", lineage.Edges[0].Parent)
	assert.Equal(t, child.Metadata.Name, lineage.Edges[0].Child)
}

func TestReset(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{rating: artifact.Rating{NetScore: 0.9}}
	svc := newService(t, scorer)

	created, err := svc.CreateArtifact(context.Background(), urlArtifact("https://huggingface.co/google-bert/bert-base-uncased"))
	require.NoError(t, err)

	require.NoError(t, svc.Reset(context.Background()))

	_, err = svc.GetArtifact(context.Background(), created.Metadata.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.History(context.Background(), created.Metadata.Name)
	assert.ErrorIs(t, err, ErrNotFound)
}
