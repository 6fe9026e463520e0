package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Compile-time check: SQLiteStore must satisfy Repository.
var _ Repository = (*SQLiteStore)(nil)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS merged_files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	basename TEXT NOT NULL,
	clean_path TEXT NOT NULL,
	colored_path TEXT,
	rows INTEGER,
	cols INTEGER,
	created_at TEXT
)`

// SQLiteStore is the durable Repository backed by a single SQLite
// database file. SQLite serializes writers itself; readers see either
// the pre- or post-write state, never a torn record.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the history database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %q: %w", path, err)
	}
	// Single connection: modernc sqlite handles concurrent use best
	// with writes funneled through one conn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Create inserts a record and returns the assigned identifier.
func (s *SQLiteStore) Create(ctx context.Context, rec *Record) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO merged_files (basename, clean_path, colored_path, rows, cols, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.BaseName, rec.CleanPath, rec.ColoredPath, rec.Rows, rec.Cols, rec.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("history: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: last insert id: %w", err)
	}
	rec.ID = id
	return id, nil
}

// List returns all records, most recent first.
func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, basename, clean_path, colored_path, rows, cols, created_at
		 FROM merged_files ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var colored sql.NullString
		if err := rows.Scan(&rec.ID, &rec.BaseName, &rec.CleanPath, &colored,
			&rec.Rows, &rec.Cols, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		rec.ColoredPath = colored.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes one record inside a transaction; artifact files are
// removed best-effort after the transaction commits.
func (s *SQLiteStore) Delete(ctx context.Context, id int64, deleteArtifacts bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin: %w", err)
	}
	defer tx.Rollback()

	var cleanPath string
	var colored sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT clean_path, colored_path FROM merged_files WHERE id = ?`, id).
		Scan(&cleanPath, &colored)
	if err == sql.ErrNoRows {
		return ErrRecordNotFound
	}
	if err != nil {
		return fmt.Errorf("history: select %d: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM merged_files WHERE id = ?`, id); err != nil {
		return fmt.Errorf("history: delete %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: commit: %w", err)
	}

	if deleteArtifacts {
		removeArtifacts(cleanPath, colored.String)
	}
	return nil
}

// Clear deletes all records; with deleteArtifacts set, the backing
// files of every record are removed best-effort first.
func (s *SQLiteStore) Clear(ctx context.Context, deleteArtifacts bool) error {
	if deleteArtifacts {
		records, err := s.List(ctx)
		if err != nil {
			return err
		}
		for _, rec := range records {
			removeArtifacts(rec.CleanPath, rec.ColoredPath)
		}
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM merged_files`); err != nil {
		return fmt.Errorf("history: clear: %w", err)
	}
	return nil
}

// removeArtifacts removes artifact files, swallowing failures: the
// metadata deletion is authoritative, missing files are fine.
func removeArtifacts(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Debug().Str("path", p).Err(err).Msg("artifact removal failed")
		}
	}
}
