package storage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/trustmodel/registry-server/internal/artifact"
)

const (
	artifactPrefix = "artifacts/"
	metadataObject = "artifact.json"
	contentObject  = "content.zip"
	ratingObject   = "rating.json"
)

// GCSStore persists artifacts in a Google Cloud Storage bucket. Each
// artifact occupies a prefix: artifacts/{id}/artifact.json holds the
// record, content.zip the decoded upload payload, rating.json the
// rating. Writes are uncoordinated pass-throughs; last writer wins.
type GCSStore struct {
	bucket *gcs.BucketHandle
}

var _ Store = (*GCSStore)(nil)

// NewGCSStore opens the named bucket using ambient credentials.
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs storage requires a bucket name")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{bucket: client.Bucket(bucket)}, nil
}

func objectPath(id, name string) string {
	return artifactPrefix + id + "/" + name
}

// Put stores a new artifact record and, for uploads, its decoded
// content.
func (s *GCSStore) Put(ctx context.Context, art *artifact.Artifact) error {
	if _, err := s.Get(ctx, art.Metadata.ID); err == nil {
		return fmt.Errorf("id %s: %w", art.Metadata.ID, ErrAlreadyExists)
	}
	return s.write(ctx, art)
}

// Get retrieves an artifact record by id.
func (s *GCSStore) Get(ctx context.Context, id string) (*artifact.Artifact, error) {
	var art artifact.Artifact
	if err := s.readJSON(ctx, objectPath(id, metadataObject), &art); err != nil {
		return nil, err
	}
	return &art, nil
}

// Update replaces an existing artifact record.
func (s *GCSStore) Update(ctx context.Context, art *artifact.Artifact) error {
	if _, err := s.Get(ctx, art.Metadata.ID); err != nil {
		return err
	}
	return s.write(ctx, art)
}

// Delete removes every object under the artifact's prefix.
func (s *GCSStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	it := s.bucket.Objects(ctx, &gcs.Query{Prefix: artifactPrefix + id + "/"})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list artifact objects: %w", err)
		}
		if err := s.bucket.Object(attrs.Name).Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete object %s: %w", attrs.Name, err)
		}
	}
}

// List returns matching artifacts ordered by name then id, windowed by
// offset and limit.
func (s *GCSStore) List(ctx context.Context, queries []artifact.Query, offset, limit int) ([]artifact.Artifact, error) {
	arts, err := s.all(ctx)
	if err != nil {
		return nil, err
	}

	matched := arts[:0]
	for _, art := range arts {
		if matchesAny(&art.Metadata, queries) {
			matched = append(matched, art)
		}
	}
	sortArtifacts(matched)
	return window(matched, offset, limit), nil
}

// SearchRegex returns artifacts whose name or id matches the expression.
func (s *GCSStore) SearchRegex(ctx context.Context, expr string) ([]artifact.Artifact, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression: %w", err)
	}

	arts, err := s.all(ctx)
	if err != nil {
		return nil, err
	}

	matched := arts[:0]
	for _, art := range arts {
		if re.MatchString(art.Metadata.Name) || re.MatchString(art.Metadata.ID) {
			matched = append(matched, art)
		}
	}
	sortArtifacts(matched)
	return matched, nil
}

// Reset removes every object under the artifact prefix.
func (s *GCSStore) Reset(ctx context.Context) error {
	it := s.bucket.Objects(ctx, &gcs.Query{Prefix: artifactPrefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list artifact objects: %w", err)
		}
		if err := s.bucket.Object(attrs.Name).Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete object %s: %w", attrs.Name, err)
		}
	}
}

// PutRating records the rating for an artifact.
func (s *GCSStore) PutRating(ctx context.Context, id string, rating *artifact.Rating) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.writeJSON(ctx, objectPath(id, ratingObject), rating)
}

// GetRating retrieves the recorded rating for an artifact.
func (s *GCSStore) GetRating(ctx context.Context, id string) (*artifact.Rating, error) {
	var rating artifact.Rating
	err := s.readJSON(ctx, objectPath(id, ratingObject), &rating)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("id %s: %w", id, ErrRatingNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// NetScores returns the recorded net score per rated artifact name.
func (s *GCSStore) NetScores(ctx context.Context) (map[string]float64, error) {
	scores := make(map[string]float64)

	it := s.bucket.Objects(ctx, &gcs.Query{Prefix: artifactPrefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list artifact objects: %w", err)
		}
		if !strings.HasSuffix(attrs.Name, "/"+ratingObject) {
			continue
		}

		var rating artifact.Rating
		if err := s.readJSON(ctx, attrs.Name, &rating); err != nil {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(attrs.Name, artifactPrefix), "/"+ratingObject)
		art, err := s.Get(ctx, id)
		if err != nil {
			continue
		}
		scores[art.Metadata.Name] = rating.NetScore
	}
	return scores, nil
}

func (s *GCSStore) write(ctx context.Context, art *artifact.Artifact) error {
	if err := s.writeJSON(ctx, objectPath(art.Metadata.ID, metadataObject), art); err != nil {
		return err
	}
	if art.Data.Content == "" {
		return nil
	}

	decoded, err := base64.StdEncoding.DecodeString(art.Data.Content)
	if err != nil {
		return fmt.Errorf("failed to decode artifact content: %w", err)
	}
	w := s.bucket.Object(objectPath(art.Metadata.ID, contentObject)).NewWriter(ctx)
	w.ContentType = "application/zip"
	if _, err := w.Write(decoded); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write artifact content: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish artifact content write: %w", err)
	}
	return nil
}

func (s *GCSStore) writeJSON(ctx context.Context, path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish write of %s: %w", path, err)
	}
	return nil
}

func (s *GCSStore) readJSON(ctx context.Context, path string, v any) error {
	r, err := s.bucket.Object(path).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}

// all loads every artifact record in the bucket.
func (s *GCSStore) all(ctx context.Context) ([]artifact.Artifact, error) {
	var arts []artifact.Artifact

	it := s.bucket.Objects(ctx, &gcs.Query{Prefix: artifactPrefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return arts, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list artifact objects: %w", err)
		}
		if !strings.HasSuffix(attrs.Name, "/"+metadataObject) {
			continue
		}

		var art artifact.Artifact
		if err := s.readJSON(ctx, attrs.Name, &art); err != nil {
			continue
		}
		arts = append(arts, art)
	}
}
