package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/hakniyev/cauchysolver/internal/store"
)

func testInfos(now time.Time) []store.RecordInfo {
	return []store.RecordInfo{
		{ID: "r1", CreatedAt: now.AddDate(0, 0, -10), Converged: true},
		{ID: "r2", CreatedAt: now.AddDate(0, 0, -5), Converged: false},
		{ID: "r3", CreatedAt: now.AddDate(0, 0, -1), Converged: true},
		{ID: "r4", CreatedAt: now.AddDate(0, 0, -30), Converged: true},
	}
}

func ids(infos []store.RecordInfo) string {
	var parts []string
	for _, info := range infos {
		parts = append(parts, info.ID)
	}
	return strings.Join(parts, ",")
}

func TestSelectResultsForDeletion(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		keepLast  int
		olderThan int
		failed    bool
		want      string
	}{
		{"by age", 0, 7, false, "r1,r4"},
		{"by count", 2, 0, false, "r1,r4"},
		{"failed only", 0, 0, true, "r2"},
		{"combined", 3, 0, true, "r2,r4"},
		{"age and count overlap", 2, 20, false, "r1,r4"},
		{"keep more than exist", 10, 0, false, ""},
		{"no rules", 0, 0, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectResultsForDeletion(testInfos(now), tt.keepLast, tt.olderThan, tt.failed, now)
			if ids(got) != tt.want {
				t.Errorf("selection mismatch: got %q, want %q", ids(got), tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.bytes); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	printResults(&buf, nil, t.TempDir())
	if !strings.Contains(buf.String(), "No results found.") {
		t.Errorf("unexpected empty output: %q", buf.String())
	}

	buf.Reset()
	now := time.Now()
	infos := []store.RecordInfo{{ID: "0123456789abcdef", Equation: "gaussian", Iterations: 7, Converged: true, CreatedAt: now}}
	printResults(&buf, infos, t.TempDir())

	out := buf.String()
	for _, want := range []string{"0123456789ab...", "gaussian", "true", "Total results: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	if !confirm(strings.NewReader("Y\n"), &out, "? ") {
		t.Error("expected Y to confirm")
	}
	if confirm(strings.NewReader("no\n"), &out, "? ") {
		t.Error("expected no to abort")
	}
	if confirm(strings.NewReader(""), &out, "? ") {
		t.Error("expected empty input to abort")
	}
}
