package store

import (
	"errors"
	"testing"
	"time"

	"github.com/hakniyev/cauchysolver/internal/solver"
)

func TestFingerprint(t *testing.T) {
	cfg := solver.DefaultConfig()
	fp := Fingerprint("gaussian", cfg)

	if len(fp) != 64 {
		t.Errorf("expected 64 hex characters, got %d (%s)", len(fp), fp)
	}
	if again := Fingerprint("gaussian", cfg); again != fp {
		t.Errorf("fingerprint not stable: %s vs %s", fp, again)
	}

	budget := cfg
	budget.MaxIterations = 5
	if Fingerprint("gaussian", budget) != fp {
		t.Error("iteration budget must not change the fingerprint")
	}

	other := cfg
	other.A = 2
	if Fingerprint("gaussian", other) == fp {
		t.Error("different A produced the same fingerprint")
	}
	if Fingerprint("exponential", cfg) == fp {
		t.Error("different equation produced the same fingerprint")
	}
}

func TestNewRecord(t *testing.T) {
	cfg := solver.DefaultConfig()
	cfg.NPart = 1
	res := &solver.Result{
		Session: solver.Session{
			Iteration:    4,
			Coefficients: []float64{0.5, 0.25},
			Distance:     1e-4,
		},
		Converged: true,
		Verdict:   "converged",
	}

	rec := NewRecord("id-1", "gaussian", cfg, res)
	if err := rec.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if rec.Fingerprint != Fingerprint("gaussian", cfg) {
		t.Error("Fingerprint mismatch")
	}

	res.Session.Coefficients[0] = 99
	if rec.Coefficients[0] != 0.5 {
		t.Error("NewRecord must copy coefficients")
	}

	sess := rec.Session()
	if sess.Iteration != 4 || sess.Distance != 1e-4 || sess.Coefficients[1] != 0.25 {
		t.Errorf("Session mismatch: got %+v", sess)
	}
	sess.Coefficients[1] = 7
	if rec.Coefficients[1] != 0.25 {
		t.Error("Session must copy coefficients")
	}

	info := rec.ToInfo()
	if info.ID != "id-1" || info.Iterations != 4 || !info.Converged {
		t.Errorf("ToInfo mismatch: got %+v", info)
	}
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Record)
		field  string
	}{
		{"empty id", func(r *Record) { r.ID = "" }, "ID"},
		{"empty equation", func(r *Record) { r.Equation = "" }, "Equation"},
		{"bad config", func(r *Record) { r.Config.N = 0 }, "Config"},
		{"negative iterations", func(r *Record) { r.Iterations = -1 }, "Iterations"},
		{"zero timestamp", func(r *Record) { r.CreatedAt = time.Time{} }, "CreatedAt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testRecord("x", time.Now())
			tt.modify(rec)

			var verr *ValidationError
			if err := rec.Validate(); !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("expected validation error on %s, got %v", tt.field, err)
			}
		})
	}
}
