package store

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS solves (
	id            TEXT PRIMARY KEY,
	equation      TEXT NOT NULL,
	fingerprint   TEXT NOT NULL,
	config_json   TEXT NOT NULL,
	coefficients  BLOB NOT NULL,
	iterations    INTEGER NOT NULL,
	distance      REAL NOT NULL,
	converged     INTEGER NOT NULL,
	verdict       TEXT NOT NULL,
	residual      REAL NOT NULL,
	created_at    INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_solves_fingerprint ON solves(fingerprint, converged, created_at);
`

const recordColumns = `id, equation, fingerprint, config_json, coefficients,
	iterations, distance, converged, verdict, residual, created_at`

// SQLiteStore keeps records in a SQLite database. Traces stay on the
// filesystem under the same data directory.
type SQLiteStore struct {
	db      *sql.DB
	baseDir string
}

// NewSQLiteStore opens <dataDir>/solves.db, creating it if needed.
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return openSQLite(filepath.Join(dataDir, "solves.db"), dataDir)
}

func openSQLite(dsn, baseDir string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &SQLiteStore{db: db, baseDir: baseDir}, nil
}

// Save inserts or replaces rec.
func (s *SQLiteStore) Save(rec *Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	cfg, err := json.Marshal(rec.Config)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO solves (`+recordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			equation = excluded.equation,
			fingerprint = excluded.fingerprint,
			config_json = excluded.config_json,
			coefficients = excluded.coefficients,
			iterations = excluded.iterations,
			distance = excluded.distance,
			converged = excluded.converged,
			verdict = excluded.verdict,
			residual = excluded.residual,
			created_at = excluded.created_at`,
		rec.ID, rec.Equation, rec.Fingerprint, string(cfg), encodeCoefficients(rec.Coefficients),
		rec.Iterations, rec.Distance, boolToInt(rec.Converged), rec.Verdict, rec.Residual,
		rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	slog.Debug("Record saved", "id", rec.ID, "backend", BackendSQLite)
	return nil
}

// Load returns the record with the given ID.
func (s *SQLiteStore) Load(id string) (*Record, error) {
	if id == "" {
		return nil, fmt.Errorf("id cannot be empty")
	}
	row := s.db.QueryRow(`SELECT `+recordColumns+` FROM solves WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{ID: id}
	}
	return rec, err
}

// List returns metadata for all records, newest first.
func (s *SQLiteStore) List() ([]RecordInfo, error) {
	rows, err := s.db.Query(`SELECT ` + recordColumns + ` FROM solves ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	infos := []RecordInfo{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, rec.ToInfo())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return infos, nil
}

// FindByFingerprint returns the newest converged record with the given
// fingerprint.
func (s *SQLiteStore) FindByFingerprint(fingerprint string) (*Record, error) {
	row := s.db.QueryRow(
		`SELECT `+recordColumns+` FROM solves
		 WHERE fingerprint = ? AND converged = 1
		 ORDER BY created_at DESC LIMIT 1`,
		fingerprint,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{ID: fingerprint}
	}
	return rec, err
}

// Delete removes the record and its trace.
func (s *SQLiteStore) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}

	res, err := s.db.Exec(`DELETE FROM solves WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n == 0 {
		return &NotFoundError{ID: id}
	}

	if s.baseDir != "" {
		if err := os.RemoveAll(solveDir(s.baseDir, id)); err != nil {
			return fmt.Errorf("failed to remove solve directory: %w", err)
		}
	}

	slog.Debug("Record deleted", "id", id, "backend", BackendSQLite)
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec       Record
		cfg       string
		coeffs    []byte
		converged int64
		createdAt int64
	)
	err := row.Scan(
		&rec.ID, &rec.Equation, &rec.Fingerprint, &cfg, &coeffs,
		&rec.Iterations, &rec.Distance, &converged, &rec.Verdict, &rec.Residual, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	if err := json.Unmarshal([]byte(cfg), &rec.Config); err != nil {
		return nil, fmt.Errorf("failed to deserialize config of %s: %w", rec.ID, err)
	}
	if rec.Coefficients, err = decodeCoefficients(coeffs); err != nil {
		return nil, fmt.Errorf("failed to decode coefficients of %s: %w", rec.ID, err)
	}
	rec.Converged = converged != 0
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	return &rec, nil
}

func encodeCoefficients(c []float64) []byte {
	buf := make([]byte, len(c)*8)
	for i, f := range c {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeCoefficients(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 8", len(b))
	}
	c := make([]float64, len(b)/8)
	for i := range c {
		c[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
