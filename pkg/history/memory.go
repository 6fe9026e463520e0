package history

import (
	"context"
	"sync"
)

var _ Repository = (*MemoryStore)(nil)

// MemoryStore is an in-memory Repository for tests and dry runs. Same
// semantics as SQLiteStore, including best-effort artifact removal.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	records []Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (m *MemoryStore) Create(_ context.Context, rec *Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = m.nextID
	m.nextID++
	m.records = append(m.records, *rec)
	return rec.ID, nil
}

func (m *MemoryStore) List(_ context.Context) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	for i, rec := range m.records {
		out[len(m.records)-1-i] = rec // most recent first
	}
	return out, nil
}

func (m *MemoryStore) Delete(_ context.Context, id int64, deleteArtifacts bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, rec := range m.records {
		if rec.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			if deleteArtifacts {
				removeArtifacts(rec.CleanPath, rec.ColoredPath)
			}
			return nil
		}
	}
	return ErrRecordNotFound
}

func (m *MemoryStore) Clear(_ context.Context, deleteArtifacts bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if deleteArtifacts {
		for _, rec := range m.records {
			removeArtifacts(rec.CleanPath, rec.ColoredPath)
		}
	}
	m.records = nil
	return nil
}

func (m *MemoryStore) Close() error { return nil }
