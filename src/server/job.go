package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/iafilius/SolveTrends/src/config"
	"github.com/iafilius/SolveTrends/src/history"
	"github.com/iafilius/SolveTrends/src/pipeline"
	"github.com/iafilius/SolveTrends/src/storage"
)

// Refresher updates the solve log in place.
type Refresher interface {
	Run(ctx context.Context, csvPath string) error
}

// Ledger records runs and lists recent ones.
type Ledger interface {
	Record(ctx context.Context, run history.Run) (string, error)
	Recent(ctx context.Context, limit int) ([]history.Run, error)
}

// Job is the fetch, refresh, publish and plot sequence behind every trigger.
// Runs are serialized because they share the working files.
type Job struct {
	Config    config.Config
	DB        storage.Bucket // holds the solve log
	Plots     storage.Bucket // receives the charts
	Refresher Refresher
	Ledger    Ledger // optional

	// Plot is pipeline.Run unless a test replaces it.
	Plot func(pipeline.Options) (pipeline.Result, error)

	mu sync.Mutex
}

// Run executes one job. trigger names what started it ("http", "cron", ...).
// The outcome is written to the ledger whether or not the job succeeds.
func (j *Job) Run(ctx context.Context, trigger string) (history.Run, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	run := history.Run{Trigger: trigger, StartedAt: time.Now().UTC()}
	if j.Config.Server.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Config.Server.JobTimeout)
		defer cancel()
	}
	err := j.run(ctx, &run)
	run.FinishedAt = time.Now().UTC()
	run.Status = history.StatusOK
	if err != nil {
		run.Status = history.StatusFailed
		run.Error = err.Error()
		logger.Errorf("%s job failed: %v", trigger, err)
	} else {
		logger.Infof("%s job done: %d valid solves, %d charts", trigger, run.Valid, len(run.Outputs))
	}
	if j.Ledger != nil {
		// the request context may already be done; the ledger write must still happen
		id, lerr := j.Ledger.Record(context.Background(), run)
		if lerr != nil {
			logger.Warnf("record run: %v", lerr)
		}
		run.ID = id
	}
	return run, err
}

func (j *Job) run(ctx context.Context, run *history.Run) error {
	s := j.Config.Server
	if err := os.MkdirAll(s.WorkDir, 0o755); err != nil {
		return fmt.Errorf("work dir: %w", err)
	}
	csvPath := filepath.Join(s.WorkDir, s.CSVObject)

	if err := j.DB.Fetch(ctx, s.CSVObject, csvPath); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		// first run: the fetcher creates the log
		logger.Warnf("%s not in bucket yet, starting a new solve log", s.CSVObject)
	}
	if err := j.Refresher.Run(ctx, csvPath); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	if err := j.DB.Publish(ctx, csvPath, s.CSVObject); err != nil {
		return err
	}

	plot := j.Plot
	if plot == nil {
		plot = pipeline.Run
	}
	res, err := plot(pipeline.FromConfig(j.Config, csvPath, filepath.Join(s.WorkDir, s.PlotObject)))
	run.Loaded, run.Valid, run.LatestSolve = res.Loaded, res.Valid, res.LatestSolve
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	run.Weekdays = history.StatsFrom(res.Summaries)
	for _, p := range res.Paths() {
		object := filepath.Base(p)
		if err := j.Plots.Publish(ctx, p, object); err != nil {
			return err
		}
		run.Outputs = append(run.Outputs, object)
	}
	return nil
}
