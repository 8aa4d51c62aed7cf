package ui

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestJobListEmpty(t *testing.T) {
	var b strings.Builder
	if err := JobList(nil).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(b.String(), "No solves yet") {
		t.Errorf("expected empty-state message, got %q", b.String())
	}
}

func TestJobListEscapes(t *testing.T) {
	end := time.Date(2026, 1, 1, 0, 0, 2, 0, time.UTC)
	jobs := []JobListItem{{
		ID:         "abc",
		State:      "failed",
		Equation:   "gaussian",
		N:          20,
		NPart:      15,
		Iterations: 7,
		Distance:   4e-4,
		StartTime:  end.Add(-2 * time.Second),
		EndTime:    &end,
		Error:      `<script>alert("x")</script>`,
	}}

	var b strings.Builder
	if err := JobList(jobs).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	html := b.String()

	if strings.Contains(html, "<script>") {
		t.Error("error message was not escaped")
	}
	for _, want := range []string{`href="/api/v1/solves/abc"`, "gaussian", `class="state-failed"`, "4.000e-04", "2s"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}
