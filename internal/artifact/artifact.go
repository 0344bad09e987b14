// Package artifact defines the core data model for the registry: artifacts
// (models, datasets, code repositories), their ratings, and the URL
// classifier that assigns a category to an ingested reference.
package artifact

import (
	"fmt"
	"strings"
)

// Type identifies the kind of artifact stored in the registry.
type Type string

const (
	// TypeModel is a machine-learning model reference.
	TypeModel Type = "model"

	// TypeDataset is a dataset reference.
	TypeDataset Type = "dataset"

	// TypeCode is a source-code repository reference.
	TypeCode Type = "code"
)

// Metadata identifies an artifact within the registry.
type Metadata struct {
	// Name is the artifact name, defaulted from the URL when not provided.
	Name string `json:"name"`

	// Version is the artifact version.
	Version string `json:"version"`

	// ID is an opaque random token assigned once at creation and never
	// changed afterwards.
	ID string `json:"id"`

	// Type is one of model, dataset or code.
	Type Type `json:"type"`
}

// Data holds the artifact payload. Exactly one of Content or URL must be
// set: Content for direct uploads (base64-encoded zip), URL for ingestion
// by reference.
type Data struct {
	Content   string `json:"content,omitempty"`
	URL       string `json:"url,omitempty"`
	JSProgram string `json:"js_program,omitempty"`
}

// Validate checks the exclusive ingestion-mode invariant.
func (d *Data) Validate() error {
	hasContent := d.Content != ""
	hasURL := d.URL != ""
	if hasContent == hasURL {
		return fmt.Errorf("exactly one of content or url must be set")
	}
	return nil
}

// IsUpload reports whether the artifact was registered by direct upload
// rather than by URL ingestion.
func (d *Data) IsUpload() bool {
	return d.Content != ""
}

// Artifact is a registered reference to a model, dataset or code repository.
type Artifact struct {
	Metadata Metadata `json:"metadata"`
	Data     Data     `json:"data"`
}

// Query filters artifact listings. A Name of "*" matches every artifact.
type Query struct {
	Name    string   `json:"name"`
	Version string   `json:"version,omitempty"`
	Types   []string `json:"types,omitempty"`
}

// Matches reports whether the query selects the given metadata.
func (q *Query) Matches(md *Metadata) bool {
	if q.Name != "*" && q.Name != "" && q.Name != md.Name {
		return false
	}
	if q.Version != "" && q.Version != md.Version {
		return false
	}
	if len(q.Types) > 0 {
		ok := false
		for _, t := range q.Types {
			if strings.EqualFold(t, string(md.Type)) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// User identifies the actor recorded in audit entries.
type User struct {
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// AuditEntry is a single history record for an artifact.
type AuditEntry struct {
	User     User     `json:"user"`
	Date     string   `json:"date"`
	Metadata Metadata `json:"metadata"`
	Action   string   `json:"action"`
}

// Audit actions recorded in history entries.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionRate   = "RATE"
)
