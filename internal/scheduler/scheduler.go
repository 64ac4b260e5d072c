// Package scheduler triggers the daily board on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jasemartin/mlb-top10-probability/internal/models"
	"github.com/jasemartin/mlb-top10-probability/internal/service"
)

// BoardRunner computes and publishes a daily board
type BoardRunner interface {
	Run(ctx context.Context, date time.Time, opts service.BoardOptions) (*models.BoardRun, error)
}

// RunStatus describes the most recent scheduled board run
type RunStatus struct {
	RunID      string    `json:"run_id,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

// Scheduler manages the scheduled board jobs
type Scheduler struct {
	cron       *cron.Cron
	runner     BoardRunner
	logger     *logrus.Logger
	location   *time.Location
	jobTimeout time.Duration
	now        func() time.Time

	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
	lastRun   *RunStatus
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewScheduler creates a new scheduler. Overlapping runs of the same job are skipped.
func NewScheduler(runner BoardRunner, location *time.Location, jobTimeout time.Duration, logger *logrus.Logger) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	cronLogger := cron.PrintfLogger(logger.WithField("component", "scheduler"))
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		runner:     runner,
		logger:     logger,
		location:   location,
		jobTimeout: jobTimeout,
		now:        time.Now,
		jobIDs:     make([]cron.EntryID, 0),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// ScheduleDailyBoard schedules the board for the current local date
func (s *Scheduler) ScheduleDailyBoard(cronExpression string, opts service.BoardOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		_, _ = s.RunNow(s.jobContext(), opts)
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":     cronExpression,
		"timezone": s.location.String(),
	}).Info("Scheduled daily board job")

	return nil
}

// RunNow computes the board for today's date in the scheduler's timezone
func (s *Scheduler) RunNow(ctx context.Context, opts service.BoardOptions) (*models.BoardRun, error) {
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	started := s.now()
	date := started.In(s.location)
	s.logger.WithField("date", date.Format("2006-01-02")).Info("Starting scheduled board run")

	run, err := s.runner.Run(ctx, date, opts)

	status := &RunStatus{StartedAt: started, FinishedAt: s.now(), Success: err == nil}
	if run != nil {
		status.RunID = run.ID.String()
	}
	if err != nil {
		status.Error = err.Error()
		s.logger.WithError(err).Error("Scheduled board run failed")
	}

	s.mu.Lock()
	s.lastRun = status
	s.mu.Unlock()

	return run, err
}

// jobContext is cancelled by Stop so in-flight scheduled runs abort
func (s *Scheduler) jobContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

// LastRun returns the status of the most recent run, or nil before the first run
func (s *Scheduler) LastRun() *RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastRun == nil {
		return nil
	}
	status := *s.lastRun
	return &status
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	if s.ctx.Err() != nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}
	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler, cancels a running job and waits for it to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
