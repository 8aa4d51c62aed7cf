package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hakniyev/cauchysolver/internal/solver"
	"github.com/hakniyev/cauchysolver/internal/store"
)

// maxSampleDensity bounds the samples endpoint.
const maxSampleDensity = 100000

// Server represents the HTTP server
type Server struct {
	jobManager *JobManager
	store      store.Store
	dataDir    string
	addr       string
	server     *http.Server
}

// NewServer creates a new HTTP server. st may be nil, in which case
// results live only in memory; dataDir, if set, receives job traces.
func NewServer(addr string, st store.Store, dataDir string) *Server {
	return &Server{
		jobManager: NewJobManager(),
		store:      st,
		dataDir:    dataDir,
		addr:       addr,
	}
}

// Handler returns the server's routes wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)

	mux.HandleFunc("/api/v1/presets", s.handlePresets)
	mux.HandleFunc("/api/v1/records", s.handleRecords)
	mux.HandleFunc("/api/v1/solves", s.handleSolves)
	mux.HandleFunc("/api/v1/solves/", s.handleSolvesWithID)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown cancels running jobs and gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	s.jobManager.CancelAll()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleSolves handles /api/v1/solves
func (s *Server) handleSolves(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateJob(w, r)
	case http.MethodGet:
		s.handleListJobs(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSolvesWithID handles /api/v1/solves/:id/*
func (s *Server) handleSolvesWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/solves/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodDelete:
		s.handleCancelJob(w, r, jobID)
	case len(parts) == 1 || parts[1] == "status":
		s.handleGetJobStatus(w, r, jobID)
	case parts[1] == "samples":
		s.handleGetSamples(w, r, jobID)
	case parts[1] == "stream":
		s.handleJobStream(w, r, jobID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// createRequest is the body of POST /api/v1/solves. Solver fields that are
// present override the equation's defaults.
type createRequest struct {
	Equation           string          `json:"equation"`
	Solver             json.RawMessage `json:"solver,omitempty"`
	DivergencePatience int             `json:"divergencePatience,omitempty"`
	Reuse              bool            `json:"reuse,omitempty"`
}

// parseJobConfig turns a create request into a validated JobConfig.
func parseJobConfig(req createRequest) (JobConfig, error) {
	if req.Equation == "" {
		req.Equation = "gaussian"
	}
	eq, err := solver.Lookup(req.Equation)
	if err != nil {
		return JobConfig{}, err
	}

	cfg := eq.Apply(solver.DefaultConfig())
	if len(req.Solver) > 0 {
		if err := json.Unmarshal(req.Solver, &cfg); err != nil {
			return JobConfig{}, fmt.Errorf("%w: invalid solver config: %v", solver.ErrInvalidConfiguration, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return JobConfig{}, err
	}
	if req.DivergencePatience < 0 {
		return JobConfig{}, fmt.Errorf("%w: divergencePatience must not be negative", solver.ErrInvalidConfiguration)
	}

	return JobConfig{
		Equation:           eq.Name,
		Solver:             cfg,
		DivergencePatience: req.DivergencePatience,
		Reuse:              req.Reuse,
	}, nil
}

// handleCreateJob handles POST /api/v1/solves
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	config, err := parseJobConfig(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := s.jobManager.CreateJob(config)

	ctx, cancel := context.WithCancel(context.Background())
	s.jobManager.setCancel(job.ID, cancel)
	go runJob(ctx, s.jobManager, s.store, s.dataDir, job.ID)

	writeJSON(w, http.StatusCreated, job)
}

// handleListJobs handles GET /api/v1/solves
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.jobManager.ListJobs()
	for _, job := range jobs {
		job.Coefficients = nil
	}
	writeJSON(w, http.StatusOK, jobs)
}

// handleGetJobStatus handles GET /api/v1/solves/:id
func (s *Server) handleGetJobStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	var elapsed time.Duration
	if job.EndTime != nil {
		elapsed = job.EndTime.Sub(job.StartTime)
	} else {
		elapsed = time.Since(job.StartTime)
	}

	writeJSON(w, http.StatusOK, struct {
		*Job
		Elapsed float64 `json:"elapsed"`
	}{job, elapsed.Seconds()})
}

// handleCancelJob handles DELETE /api/v1/solves/:id
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if _, exists := s.jobManager.GetJob(jobID); !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	if !s.jobManager.CancelJob(jobID) {
		http.Error(w, "Job already finished", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// samplesResponse is the body of GET /api/v1/solves/:id/samples.
type samplesResponse struct {
	ID        string    `json:"id"`
	Iteration int       `json:"iteration"`
	X         []float64 `json:"x"`
	Y         []float64 `json:"y"`
}

// handleGetSamples handles GET /api/v1/solves/:id/samples?density=N.
// Jobs of this process are sampled at their latest iteration; other IDs
// are looked up in the store.
func (s *Server) handleGetSamples(w http.ResponseWriter, r *http.Request, jobID string) {
	density := 100
	if v := r.URL.Query().Get("density"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxSampleDensity {
			http.Error(w, fmt.Sprintf("density must be an integer in [1, %d]", maxSampleDensity), http.StatusBadRequest)
			return
		}
		density = n
	}

	var (
		cfg  solver.Config
		sess solver.Session
	)
	if job, exists := s.jobManager.GetJob(jobID); exists {
		if len(job.Coefficients) == 0 {
			http.Error(w, "No results yet", http.StatusNotFound)
			return
		}
		cfg, sess = job.Config.Solver, job.Session()
	} else if s.store != nil {
		rec, err := s.store.Load(jobID)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Job not found", http.StatusNotFound)
			return
		} else if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		cfg, sess = rec.Config, rec.Session()
	} else {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	sol, err := solver.Configure(cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	xs, ys, err := sol.SolutionSamples(sess, density)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, samplesResponse{ID: jobID, Iteration: sess.Iteration, X: xs, Y: ys})
}

// presetInfo describes a preset equation.
type presetInfo struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Y0          float64 `json:"y0"`
	A           float64 `json:"a"`
	B           float64 `json:"b"`
}

// handlePresets handles GET /api/v1/presets
func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var presets []presetInfo
	for _, name := range solver.PresetNames() {
		eq, _ := solver.Lookup(name)
		presets = append(presets, presetInfo{
			Name:        eq.Name,
			Description: eq.Description,
			Y0:          eq.Y0,
			A:           eq.A,
			B:           eq.B,
		})
	}
	writeJSON(w, http.StatusOK, presets)
}

// handleRecords handles GET /api/v1/records
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.store == nil {
		writeJSON(w, http.StatusOK, []store.RecordInfo{})
		return
	}

	infos, err := s.store.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
