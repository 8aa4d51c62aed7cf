package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hakniyev/cauchysolver/internal/solver"
	"github.com/hakniyev/cauchysolver/internal/store"
)

// residualDensity is the grid size used to score finished solves.
const residualDensity = 200

// runJob executes a solve in the background.
// When st is not nil the finished result is saved there, and when dataDir
// is set every Picard step is appended to the job's trace.
func runJob(ctx context.Context, jm *JobManager, st store.Store, dataDir, jobID string) error {
	defer jm.releaseCancel(jobID)

	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	eq, err := solver.Lookup(job.Config.Equation)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}
	s, err := solver.Configure(job.Config.Solver)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	if err := jm.UpdateJob(jobID, func(j *Job) { j.State = StateRunning }); err != nil {
		return err
	}
	jm.broadcast(jobID)

	slog.Info("Starting job", "job_id", jobID, "equation", eq.Name, "n", job.Config.Solver.N, "nPart", job.Config.Solver.NPart)

	if job.Config.Reuse && st != nil {
		rec, err := st.FindByFingerprint(store.Fingerprint(eq.Name, job.Config.Solver))
		if err == nil {
			completeFromRecord(jm, jobID, rec)
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("Failed to look up stored result", "job_id", jobID, "error", err)
		}
	}

	var trace *store.TraceWriter
	if dataDir != "" {
		trace, err = store.NewTraceWriter(dataDir, jobID, false)
		if err != nil {
			slog.Warn("Failed to open trace", "job_id", jobID, "error", err)
		} else {
			defer trace.Close()
		}
	}

	observe := func(sess solver.Session) {
		jm.UpdateJob(jobID, func(j *Job) {
			j.Iterations = sess.Iteration
			j.Distance = sess.Distance
			j.Coefficients = sess.Coefficients
		})
		jm.broadcast(jobID)

		if trace != nil {
			entry := store.TraceEntry{Iteration: sess.Iteration, Distance: sess.Distance, Timestamp: time.Now()}
			if err := trace.Write(entry); err != nil {
				slog.Warn("Failed to write trace entry", "job_id", jobID, "error", err)
			}
		}
	}

	res, err := s.Solve(ctx, eq.RHS,
		solver.WithObserver(observe),
		solver.WithDivergencePatience(job.Config.DivergencePatience),
	)
	if ctx.Err() != nil {
		markJobCancelled(jm, jobID)
		return ctx.Err()
	}
	if err != nil && !errors.Is(err, solver.ErrNonConvergence) {
		markJobFailed(jm, jobID, err)
		return err
	}

	residual, rerr := s.Residual(res.Session, eq.RHS, residualDensity)
	if rerr != nil {
		slog.Warn("Failed to compute residual", "job_id", jobID, "error", rerr)
	}

	if st != nil {
		rec := store.NewRecord(jobID, eq.Name, job.Config.Solver, res)
		rec.Residual = residual
		if err := st.Save(rec); err != nil {
			slog.Error("Failed to save result", "job_id", jobID, "error", err)
		}
	}

	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.Iterations = res.Session.Iteration
		j.Distance = res.Session.Distance
		j.Coefficients = res.Session.Coefficients
		j.Converged = res.Converged
		j.Verdict = res.Verdict
		j.Residual = residual
		j.EndTime = &endTime
		if err != nil {
			j.State = StateFailed
			j.Error = err.Error()
		} else {
			j.State = StateCompleted
		}
	})

	slog.Info("Job finished",
		"job_id", jobID,
		"verdict", res.Verdict,
		"iterations", res.Session.Iteration,
		"distance", res.Session.Distance,
		"residual", residual,
		"elapsed", res.Elapsed,
	)

	jm.broadcast(jobID)
	return err
}

// completeFromRecord finishes a job with a previously stored result.
func completeFromRecord(jm *JobManager, jobID string, rec *store.Record) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Iterations = rec.Iterations
		j.Distance = rec.Distance
		j.Coefficients = append([]float64(nil), rec.Coefficients...)
		j.Converged = rec.Converged
		j.Verdict = rec.Verdict
		j.Residual = rec.Residual
		j.ReusedFrom = rec.ID
		j.EndTime = &endTime
	})
	slog.Info("Job reused stored result", "job_id", jobID, "record", rec.ID)
	jm.broadcast(jobID)
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
	jm.broadcast(jobID)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
	jm.broadcast(jobID)
}
