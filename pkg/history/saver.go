package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ruslano69/xlmerge/pkg/table"
	"github.com/ruslano69/xlmerge/pkg/xlsx"
)

// PersistenceError - writing an artifact or history record failed.
// Surfaced as a warning: the in-memory merge result is intact and the
// caller can retry the save without recomputing.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Saver writes merge artifacts into a durable directory and catalogues
// them in a Repository.
type Saver struct {
	dir  string
	repo Repository
}

// NewSaver creates a Saver writing into dir. The directory is created
// if missing.
func NewSaver(dir string, repo Repository) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &PersistenceError{Op: "mkdir", Err: err}
	}
	return &Saver{dir: dir, repo: repo}, nil
}

// SaveRequest describes one save: a clean view, an annotated view, and
// the column that marks rows to highlight in the colored artifact.
type SaveRequest struct {
	BaseName   string
	Clean      *table.Table
	Annotated  *table.Table
	FlagColumn string
	Overwrite  bool
	SheetName  string
}

// Save writes both artifacts with collision-avoiding names, records
// them in the catalogue, and returns the created record.
//
// The annotated (colored) artifact is best-effort: if the styled write
// fails, the same data is written unstyled instead - a presentation
// failure never blocks the user from obtaining correct data.
func (s *Saver) Save(ctx context.Context, req SaveRequest) (*Record, error) {
	base := xlsx.SanitizeBaseName(req.BaseName)
	sheet := req.SheetName
	if sheet == "" {
		sheet = "merged"
	}

	cleanPath, err := xlsx.UniquePath(filepath.Join(s.dir, base+".xlsx"), req.Overwrite)
	if err != nil {
		return nil, &PersistenceError{Op: "clean path", Err: err}
	}
	coloredPath, err := xlsx.UniquePath(filepath.Join(s.dir, base+"_colored.xlsx"), req.Overwrite)
	if err != nil {
		return nil, &PersistenceError{Op: "colored path", Err: err}
	}

	if err := xlsx.WriteFile(req.Clean, cleanPath, sheet); err != nil {
		return nil, &PersistenceError{Op: "write clean", Err: err}
	}

	if err := xlsx.WriteAnnotatedFile(req.Annotated, coloredPath, sheet, req.FlagColumn); err != nil {
		log.Warn().Err(err).Msg("styled export failed, falling back to unstyled")
		if err := xlsx.WriteFile(req.Annotated, coloredPath, sheet); err != nil {
			return nil, &PersistenceError{Op: "write colored", Err: err}
		}
	}

	if sum, err := xlsx.Checksum(cleanPath); err == nil {
		log.Debug().Str("path", cleanPath).Str("xxh3", sum).Msg("artifact written")
	}

	rec := &Record{
		BaseName:    base,
		CleanPath:   cleanPath,
		ColoredPath: coloredPath,
		Rows:        req.Clean.RowCount(),
		Cols:        req.Clean.ColumnCount(),
		CreatedAt:   time.Now().Format(TimeFormat),
	}
	if _, err := s.repo.Create(ctx, rec); err != nil {
		return nil, &PersistenceError{Op: "catalogue", Err: err}
	}
	return rec, nil
}
