package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hakniyev/cauchysolver/internal/server"
)

func TestStatusAgainstServer(t *testing.T) {
	ts := httptest.NewServer(server.NewServer(":0", nil, "").Handler())
	defer ts.Close()

	var out bytes.Buffer
	if err := listJobs(&out, ts.URL+"/api/v1/solves"); err != nil {
		t.Fatalf("listJobs failed: %v", err)
	}
	if !strings.Contains(out.String(), "No jobs found") {
		t.Errorf("unexpected output: %q", out.String())
	}

	resp, err := http.Post(ts.URL+"/api/v1/solves", "application/json", strings.NewReader(`{"equation":"gaussian"}`))
	if err != nil {
		t.Fatal(err)
	}
	var job server.Job
	json.NewDecoder(resp.Body).Decode(&job)
	resp.Body.Close()

	out.Reset()
	if err := getJobStatus(&out, ts.URL+"/api/v1/solves/"+job.ID, job.ID); err != nil {
		t.Fatalf("getJobStatus failed: %v", err)
	}
	for _, want := range []string{"Job: " + job.ID, "Equation: gaussian", "nPart=15"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := listJobs(&out, ts.URL+"/api/v1/solves"); err != nil {
		t.Fatalf("listJobs failed: %v", err)
	}
	if !strings.Contains(out.String(), "Total jobs: 1") {
		t.Errorf("unexpected list output:\n%s", out.String())
	}

	err = getJobStatus(&out, ts.URL+"/api/v1/solves/missing", "missing")
	if err == nil || !strings.Contains(err.Error(), "job not found") {
		t.Errorf("expected job not found error, got %v", err)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID(abc) = %q", got)
	}
	if got := shortID("0123456789abcdef"); got != "0123456789ab..." {
		t.Errorf("shortID truncation = %q", got)
	}
}
