package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
	"github.com/ordernotify/golang_services/internal/platform/lock"
)

const sweepLockName = "expiration-sweep"

// ExpiredReporter delivers the report of reminders that just expired.
type ExpiredReporter interface {
	ReportExpired(ctx context.Context, records []*domain.ReminderRecord) error
}

// SweepResult lists the records this sweep moved to expired.
type SweepResult struct {
	Expired []*domain.ReminderRecord
}

// ExpirationSweeper expires stale reminders and reports them.
type ExpirationSweeper struct {
	reminders domain.ReminderRepository
	reporter  ExpiredReporter
	locker    lock.Locker
	lockTTL   time.Duration
	events    *EventEmitter
	logger    *slog.Logger
	now       func() time.Time
}

func NewExpirationSweeper(
	reminders domain.ReminderRepository,
	reporter ExpiredReporter,
	locker lock.Locker,
	lockTTL time.Duration,
	events *EventEmitter,
	logger *slog.Logger,
) *ExpirationSweeper {
	if locker == nil {
		locker = lock.NoopLocker{}
	}
	return &ExpirationSweeper{
		reminders: reminders,
		reporter:  reporter,
		locker:    locker,
		lockTTL:   lockTTL,
		events:    events,
		logger:    logger.With("service", "expiration_sweeper"),
		now:       time.Now,
	}
}

// Sweep expires every reminded record past its expiration date. Transitions are kept even when
// the report fails; in that case the result is returned together with an error wrapping
// domain.ErrReportFailed.
func (s *ExpirationSweeper) Sweep(ctx context.Context) (result *SweepResult, err error) {
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		label := "ok"
		if err != nil {
			label = "error"
		}
		sweepDurationHist.WithLabelValues(label).Observe(v)
	}))
	defer timer.ObserveDuration()

	release, err := s.locker.Acquire(ctx, sweepLockName, s.lockTTL)
	if errors.Is(err, lock.ErrNotAcquired) {
		s.logger.WarnContext(ctx, "Expiration sweep already running elsewhere")
		return nil, domain.ErrSweepInProgress
	}
	if err != nil {
		return nil, domain.Downstream("acquire sweep lock", err)
	}
	defer func() {
		if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
			s.logger.WarnContext(ctx, "Failed to release sweep lock", "error", relErr)
		}
	}()

	now := s.now().UTC()
	candidates, err := s.reminders.FindExpired(ctx, now)
	if err != nil {
		return nil, domain.Downstream("find expired reminders", err)
	}
	if len(candidates) == 0 {
		s.logger.InfoContext(ctx, "No expired reminders found")
		return &SweepResult{}, nil
	}

	transitioned := make([]bool, len(candidates))
	updateErrs := make([]error, len(candidates))
	var g errgroup.Group
	for i, rec := range candidates {
		g.Go(func() error {
			transitioned[i], updateErrs[i] = s.reminders.MarkExpired(ctx, rec.ID, now)
			return nil
		})
	}
	_ = g.Wait()

	result = &SweepResult{}
	for i, rec := range candidates {
		if updateErrs[i] != nil {
			s.logger.ErrorContext(ctx, "Failed to expire reminder", "reminder_id", rec.ID, "error", updateErrs[i])
			continue
		}
		if !transitioned[i] {
			continue
		}
		expired := *rec
		expired.Status = domain.ReminderStatusExpired
		expired.LastUpdated = now
		result.Expired = append(result.Expired, &expired)
	}
	remindersExpiredCounter.Add(float64(len(result.Expired)))

	var errs []error
	if updateErr := errors.Join(updateErrs...); updateErr != nil {
		errs = append(errs, domain.Downstream("expire reminders", updateErr))
	}

	if len(result.Expired) > 0 {
		ids := make([]string, 0, len(result.Expired))
		for _, r := range result.Expired {
			ids = append(ids, r.ID)
		}
		s.events.Emit(ctx, domain.SubjectRemindersExpired, "", "", map[string]any{"reminderIds": ids})

		if repErr := s.reporter.ReportExpired(ctx, result.Expired); repErr != nil {
			s.logger.ErrorContext(ctx, "Failed to send expiration report", "error", repErr, "records", len(result.Expired))
			errs = append(errs, fmt.Errorf("%w: %w", domain.ErrReportFailed, repErr))
		}
	}

	s.logger.InfoContext(ctx, "Expiration sweep finished", "candidates", len(candidates), "expired", len(result.Expired))
	return result, errors.Join(errs...)
}
