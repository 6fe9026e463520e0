// Package history keeps the durable catalogue of past merge outputs:
// metadata records plus the locations of the artifact files backing
// them. The catalogue is the only state carried between merges and
// across restarts.
package history

import (
	"context"
	"errors"
)

// TimeFormat is the fixed creation-timestamp format stored in records.
const TimeFormat = "2006-01-02 15:04"

// ErrRecordNotFound is returned by Delete for an unknown record id.
var ErrRecordNotFound = errors.New("history record not found")

// Record is persisted metadata about one completed merge.
type Record struct {
	ID          int64  `json:"id"`
	BaseName    string `json:"basename"`
	CleanPath   string `json:"clean_path"`
	ColoredPath string `json:"colored_path,omitempty"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	CreatedAt   string `json:"created_at"` // TimeFormat
}

// Repository is the catalogue contract. The merge pipeline never
// touches storage details directly; tests use the in-memory
// implementation.
//
// Each operation is a single atomic transaction against the store:
// concurrent sessions may interleave calls but never observe a torn
// record.
type Repository interface {
	// Create assigns a new identifier, persists the record, and
	// returns the identifier.
	Create(ctx context.Context, rec *Record) (int64, error)

	// List returns all records, most recent first.
	List(ctx context.Context) ([]Record, error)

	// Delete removes the record and, when deleteArtifacts is set,
	// best-effort removes the backing files. A failed file removal is
	// swallowed: the metadata deletion is the authoritative operation.
	Delete(ctx context.Context, id int64, deleteArtifacts bool) error

	// Clear deletes all records with the same artifact-removal
	// semantics as Delete.
	Clear(ctx context.Context, deleteArtifacts bool) error

	// Close releases the underlying store.
	Close() error
}
