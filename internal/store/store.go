package store

import (
	"fmt"
	"strings"
)

// Store persists solve records.
// Implementations must be safe for concurrent use.
//
// Load and Delete return ErrNotFound for unknown IDs, as does
// FindByFingerprint when nothing matches.
type Store interface {
	// Save writes the record, replacing any record with the same ID.
	Save(rec *Record) error

	// Load returns the record with the given ID.
	Load(id string) (*Record, error)

	// List returns metadata for all records, newest first.
	List() ([]RecordInfo, error)

	// Delete removes the record and any artifacts stored with it.
	Delete(id string) error

	// FindByFingerprint returns the newest converged record with the given
	// fingerprint.
	FindByFingerprint(fingerprint string) (*Record, error)

	Close() error
}

// ErrNotFound is returned when a requested record does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing record.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return "record not found: " + e.ID
	}
	return "record not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// Backend names accepted by Open.
const (
	BackendFS     = "fs"
	BackendSQLite = "sqlite"
)

// Open returns the store for the named backend rooted at dataDir.
// The SQLite backend keeps its database at <dataDir>/solves.db.
func Open(backend, dataDir string) (Store, error) {
	switch strings.ToLower(backend) {
	case BackendFS, "":
		return NewFSStore(dataDir)
	case BackendSQLite:
		return NewSQLiteStore(dataDir)
	default:
		return nil, fmt.Errorf("unknown store backend %q (want %s or %s)", backend, BackendFS, BackendSQLite)
	}
}
