package store

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zeebo/blake3"

	"github.com/hakniyev/cauchysolver/internal/solver"
)

// Record is a persisted solve: the configuration it ran with and the
// coefficient vector it ended on.
type Record struct {
	// ID is the unique identifier of the solve.
	ID string `json:"id"`

	// Equation names the right-hand side that was solved.
	Equation string `json:"equation"`

	Config solver.Config `json:"config"`

	// Fingerprint identifies (Equation, Config). Two records with the same
	// fingerprint hold the same coefficients.
	Fingerprint string `json:"fingerprint"`

	Coefficients []float64 `json:"coefficients"`
	Iterations   int       `json:"iterations"`
	Distance     float64   `json:"distance"`
	Converged    bool      `json:"converged"`
	Verdict      string    `json:"verdict"`

	// Residual is the equation residual of the final coefficients, or 0
	// if it was not computed.
	Residual float64 `json:"residual"`

	CreatedAt time.Time `json:"createdAt"`
}

// RecordInfo is the listing view of a Record, without coefficients.
type RecordInfo struct {
	ID          string    `json:"id"`
	Equation    string    `json:"equation"`
	Fingerprint string    `json:"fingerprint"`
	Iterations  int       `json:"iterations"`
	Distance    float64   `json:"distance"`
	Converged   bool      `json:"converged"`
	Residual    float64   `json:"residual"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewRecord builds a record from a finished solve.
func NewRecord(id, equation string, cfg solver.Config, res *solver.Result) *Record {
	return &Record{
		ID:           id,
		Equation:     equation,
		Config:       cfg,
		Fingerprint:  Fingerprint(equation, cfg),
		Coefficients: append([]float64(nil), res.Session.Coefficients...),
		Iterations:   res.Session.Iteration,
		Distance:     res.Session.Distance,
		Converged:    res.Converged,
		Verdict:      res.Verdict,
		CreatedAt:    time.Now().UTC(),
	}
}

// ToInfo strips the coefficients.
func (r *Record) ToInfo() RecordInfo {
	return RecordInfo{
		ID:          r.ID,
		Equation:    r.Equation,
		Fingerprint: r.Fingerprint,
		Iterations:  r.Iterations,
		Distance:    r.Distance,
		Converged:   r.Converged,
		Residual:    r.Residual,
		CreatedAt:   r.CreatedAt,
	}
}

// Session restores the iteration state the record was saved from.
func (r *Record) Session() solver.Session {
	return solver.Session{
		Iteration:    r.Iterations,
		Coefficients: append([]float64(nil), r.Coefficients...),
		Distance:     r.Distance,
	}
}

// Validate checks that the record can be stored and later evaluated.
func (r *Record) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	}
	if r.Equation == "" {
		return &ValidationError{Field: "Equation", Reason: "cannot be empty"}
	}
	if err := r.Config.Validate(); err != nil {
		return &ValidationError{Field: "Config", Reason: err.Error()}
	}
	if want := r.Config.NPart + 1; len(r.Coefficients) != want {
		return &ValidationError{
			Field:  "Coefficients",
			Reason: fmt.Sprintf("length mismatch: expected %d for nPart %d, got %d", want, r.Config.NPart, len(r.Coefficients)),
		}
	}
	if r.Iterations < 0 {
		return &ValidationError{Field: "Iterations", Reason: "cannot be negative"}
	}
	if r.CreatedAt.IsZero() {
		return &ValidationError{Field: "CreatedAt", Reason: "cannot be zero"}
	}
	return nil
}

// ValidationError reports an invalid record field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// Fingerprint hashes an equation name and configuration into a hex digest.
// The iteration budget is excluded: it bounds the run but does not change
// a converged result.
func Fingerprint(equation string, cfg solver.Config) string {
	cfg.MaxIterations = 0
	data, err := json.Marshal(cfg)
	if err != nil {
		// Config holds only numbers; Marshal fails only on NaN or Inf,
		// which Validate rejects.
		data = []byte(fmt.Sprintf("%+v", cfg))
	}

	hasher := blake3.New()
	hasher.Write([]byte(equation))
	hasher.Write([]byte{0})
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}
