package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// FSStore keeps each record as JSON under <baseDir>/solves/<id>/.
//
// Writes go through a temp file and a rename, so the store needs no locks
// and readers never see a partial record.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a filesystem store, creating baseDir if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

// BaseDir returns the store root.
func (fs *FSStore) BaseDir() string {
	return fs.baseDir
}

func (fs *FSStore) recordPath(id string) string {
	return filepath.Join(solveDir(fs.baseDir, id), "result.json")
}

// Save atomically writes rec.
func (fs *FSStore) Save(rec *Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	dir := solveDir(fs.baseDir, rec.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create solve directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}

	finalPath := fs.recordPath(rec.ID)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp record file: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename record file: %w", err)
	}

	slog.Debug("Record saved", "id", rec.ID, "path", finalPath)
	return nil
}

// Load reads the record with the given ID.
func (fs *FSStore) Load(id string) (*Record, error) {
	if id == "" {
		return nil, fmt.Errorf("id cannot be empty")
	}

	data, err := os.ReadFile(fs.recordPath(id))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{ID: id}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to deserialize record: %w", err)
	}
	return &rec, nil
}

// List returns metadata for every readable record. Corrupt records are
// skipped with a warning.
func (fs *FSStore) List() ([]RecordInfo, error) {
	records, err := fs.loadAll()
	if err != nil {
		return nil, err
	}

	infos := make([]RecordInfo, 0, len(records))
	for _, rec := range records {
		infos = append(infos, rec.ToInfo())
	}
	slog.Debug("Listed records", "count", len(infos))
	return infos, nil
}

// FindByFingerprint scans all records for the newest converged match.
func (fs *FSStore) FindByFingerprint(fingerprint string) (*Record, error) {
	records, err := fs.loadAll()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.Converged && rec.Fingerprint == fingerprint {
			return rec, nil
		}
	}
	return nil, &NotFoundError{ID: fingerprint}
}

// loadAll returns all readable records, newest first.
func (fs *FSStore) loadAll() ([]*Record, error) {
	entries, err := os.ReadDir(filepath.Join(fs.baseDir, solvesDir))
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read solves directory: %w", err)
	}

	var records []*Record
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rec, err := fs.Load(entry.Name())
		if err != nil {
			// A directory holding only a trace is a solve that never finished.
			if !errors.Is(err, ErrNotFound) {
				slog.Warn("Failed to load record for listing", "id", entry.Name(), "error", err)
			}
			continue
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Delete removes the record's directory, trace included.
func (fs *FSStore) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}

	dir := solveDir(fs.baseDir, id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{ID: id}
	} else if err != nil {
		return fmt.Errorf("failed to stat solve directory: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove solve directory: %w", err)
	}

	slog.Debug("Record deleted", "id", id, "path", dir)
	return nil
}

// Close is a no-op for the filesystem store.
func (fs *FSStore) Close() error {
	return nil
}
