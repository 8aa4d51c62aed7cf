package server

import (
	"context"
	"testing"
	"time"

	"github.com/hakniyev/cauchysolver/internal/solver"
)

func testJobConfig() JobConfig {
	eq, _ := solver.Lookup("gaussian")
	return JobConfig{Equation: eq.Name, Solver: eq.Apply(solver.DefaultConfig())}
}

func TestJobManager_CreateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testJobConfig())

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}
	if job.State != StatePending {
		t.Errorf("Initial state should be pending, got %s", job.State)
	}
	if job.Config.Equation != "gaussian" {
		t.Errorf("Config not set correctly: %+v", job.Config)
	}
}

func TestJobManager_GetJobReturnsSnapshot(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testJobConfig())

	jm.UpdateJob(job.ID, func(j *Job) { j.Coefficients = []float64{1, 2} })

	snap, ok := jm.GetJob(job.ID)
	if !ok {
		t.Fatal("job not found")
	}
	snap.Coefficients[0] = 42
	snap.State = StateFailed

	again, _ := jm.GetJob(job.ID)
	if again.Coefficients[0] != 1 || again.State != StatePending {
		t.Errorf("snapshot mutation leaked into manager: %+v", again)
	}

	if _, ok := jm.GetJob("missing"); ok {
		t.Error("expected missing job to be absent")
	}
}

func TestJobManager_ListJobsOrdered(t *testing.T) {
	jm := NewJobManager()
	first := jm.CreateJob(testJobConfig())
	time.Sleep(time.Millisecond)
	second := jm.CreateJob(testJobConfig())

	jobs := jm.ListJobs()
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != first.ID || jobs[1].ID != second.ID {
		t.Error("jobs should be listed oldest first")
	}
}

func TestJobManager_UpdateJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testJobConfig())

	err := jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.Iterations = 3
	})
	if err != nil {
		t.Fatalf("UpdateJob failed: %v", err)
	}

	running := jm.GetRunningJobs()
	if len(running) != 1 || running[0].Iterations != 3 {
		t.Errorf("expected one running job with 3 iterations, got %+v", running)
	}

	if err := jm.UpdateJob("missing", func(*Job) {}); err == nil {
		t.Error("expected error for missing job")
	}
}

func TestJobManager_Cancel(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testJobConfig())

	if jm.CancelJob(job.ID) {
		t.Error("job without a cancel func should not be cancellable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	jm.setCancel(job.ID, cancel)

	if !jm.CancelJob(job.ID) {
		t.Error("expected CancelJob to succeed")
	}
	if ctx.Err() == nil {
		t.Error("context should be cancelled")
	}

	jm.releaseCancel(job.ID)
	if jm.CancelJob(job.ID) {
		t.Error("released job should not be cancellable")
	}
}
