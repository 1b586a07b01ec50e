package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ordernotify/golang_services/internal/scheduler_service/domain"
)

// Triggerer runs one sweep.
type Triggerer interface {
	Trigger(ctx context.Context) (*domain.SweepRun, error)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

// SweepScheduler fires the trigger on a cron schedule. Overlapping runs are skipped.
type SweepScheduler struct {
	cron    *cron.Cron
	trigger Triggerer
	timeout time.Duration
	logger  *slog.Logger
}

// NewSweepScheduler accepts standard five-field specs and descriptors such as "@daily".
func NewSweepScheduler(schedule string, trigger Triggerer, runTimeout time.Duration, logger *slog.Logger) (*SweepScheduler, error) {
	logger = logger.With("component", "sweep_scheduler")
	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if runTimeout <= 0 {
		runTimeout = 5 * time.Minute
	}
	s := &SweepScheduler{cron: c, trigger: trigger, timeout: runTimeout, logger: logger}
	if _, err := c.AddFunc(schedule, s.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// RunOnce triggers a sweep immediately.
func (s *SweepScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	run, err := s.trigger.Trigger(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Scheduled sweep failed", "error", err)
		return
	}
	s.logger.InfoContext(ctx, "Scheduled sweep finished", "status", run.Status, "expired", run.Expired)
}

// Next reports when the sweep fires next after now.
func (s *SweepScheduler) Next(now time.Time) time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Schedule.Next(now)
}

func (s *SweepScheduler) Start() { s.cron.Start() }

// Stop halts the schedule and waits for a running sweep to return or ctx to end.
func (s *SweepScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Gave up waiting for running sweep", "error", ctx.Err())
	}
}
