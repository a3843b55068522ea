// Package server exposes the plot job over HTTP and on a cron timer.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/iafilius/SolveTrends/src/applog"
	"github.com/iafilius/SolveTrends/src/history"
)

var (
	logger  = applog.For("server")
	httpLog = applog.For("http")
)

const (
	defaultRecentRuns = 20
	maxRecentRuns     = 500
)

// Server serves the job trigger and the run ledger.
type Server struct {
	job *Job
}

// New returns a server for job.
func New(job *Job) *Server {
	return &Server{job: job}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(Logger)
	r.HandleFunc("/", s.handleTrigger).Methods(http.MethodGet)
	r.HandleFunc("/runs", s.handleRuns).Methods(http.MethodGet)
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	return r
}

// Logger logs each request with its status and duration.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpLog.Infof("%s %s %d %s", r.Method, r.RequestURI, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if _, err := s.job.Run(r.Context(), "http"); err != nil {
		http.Error(w, "plot job failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "Success!")
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.job.Ledger == nil {
		http.Error(w, "run history disabled", http.StatusNotFound)
		return
	}
	n := defaultRecentRuns
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			http.Error(w, "n must be a positive integer", http.StatusBadRequest)
			return
		}
		n = min(parsed, maxRecentRuns)
	}
	runs, err := s.job.Ledger.Recent(r.Context(), n)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(runs); err != nil {
		httpLog.Warnf("encode runs: %v", err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "ok")
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
// When schedule is non-empty the job also runs on that cron schedule.
func (s *Server) ListenAndServe(ctx context.Context, addr, schedule string) error {
	if schedule != "" {
		sched := NewScheduler()
		if err := sched.Schedule(schedule, func() {
			_, _ = s.job.Run(ctx, "cron")
		}); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Infof("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
