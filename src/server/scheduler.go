package server

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a task on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	entryID cron.EntryID
}

// NewScheduler creates a stopped scheduler in the server's local time zone.
func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Schedule registers task under a standard 5-field cron expression,
// replacing any previous entry.
func (s *Scheduler) Schedule(expr string, task func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
		s.entryID = 0
	}
	id, err := s.cron.AddFunc(expr, task)
	if err != nil {
		return fmt.Errorf("adding cron entry: %w", err)
	}
	s.entryID = id
	logger.Infof("scheduled job %q", expr)
	return nil
}

// Start begins the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
