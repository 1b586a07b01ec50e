package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
	"github.com/ordernotify/golang_services/internal/notification_service/provider"
	"github.com/ordernotify/golang_services/internal/notification_service/templates"
)

// ReminderOutcome is the result for one entry of a /reminders batch.
type ReminderOutcome struct {
	Customer   domain.ReminderEntry `json:"customer"`
	Status     string               `json:"status"`
	ReminderID string               `json:"reminderId,omitempty"`
	Error      string               `json:"error,omitempty"`
}

type ReminderSummary struct {
	Outcomes []ReminderOutcome
	Sent     int
	Failed   []ReminderOutcome
}

func (s *ReminderSummary) Success() bool { return s.Sent > 0 }

// ReminderManager creates and deletes reminder records and sends the reminder SMS.
type ReminderManager struct {
	reminders domain.ReminderRepository
	sender    provider.SMSSenderProvider
	catalog   *templates.Catalog
	expiry    time.Duration
	events    *EventEmitter
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

func NewReminderManager(
	reminders domain.ReminderRepository,
	sender provider.SMSSenderProvider,
	catalog *templates.Catalog,
	expiry time.Duration,
	events *EventEmitter,
	logger *slog.Logger,
) *ReminderManager {
	if expiry <= 0 {
		expiry = domain.DefaultReminderExpiry
	}
	return &ReminderManager{
		reminders: reminders,
		sender:    sender,
		catalog:   catalog,
		expiry:    expiry,
		events:    events,
		logger:    logger.With("service", "reminder_manager"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Create stores one reminder per entry and sends it. Reminders are not deduplicated.
func (m *ReminderManager) Create(ctx context.Context, entries []domain.ReminderEntry) (*ReminderSummary, error) {
	outcomes := make([]ReminderOutcome, len(entries))

	var g errgroup.Group
	for i := range entries {
		g.Go(func() error {
			outcomes[i] = m.createOne(ctx, entries[i])
			return nil
		})
	}
	_ = g.Wait()

	summary := &ReminderSummary{Outcomes: outcomes}
	for _, o := range outcomes {
		remindersCreatedCounter.WithLabelValues(o.Status).Inc()
		if o.Status == OutcomeSent {
			summary.Sent++
		} else {
			summary.Failed = append(summary.Failed, o)
		}
	}
	m.logger.InfoContext(ctx, "Reminder batch processed", "entries", len(entries), "sent", summary.Sent, "failed", len(summary.Failed))
	return summary, nil
}

func (m *ReminderManager) createOne(ctx context.Context, entry domain.ReminderEntry) ReminderOutcome {
	log := m.logger.With("phone_number", entry.PhoneNumber, "order_number", entry.OrderNumber)
	rec := domain.NewReminderRecord(m.newID(), entry, m.now().UTC(), m.expiry)
	failed := func(stage string, err error) ReminderOutcome {
		log.ErrorContext(ctx, "Reminder failed", "stage", stage, "error", err, "reminder_id", rec.ID)
		return ReminderOutcome{Customer: entry, Status: OutcomeFailed, ReminderID: rec.ID, Error: err.Error()}
	}

	if err := m.reminders.Create(ctx, rec); err != nil {
		return failed("persist", domain.Downstream("store reminder", err))
	}

	body, err := m.catalog.Reminder(templates.MessageData{
		Name:              entry.Name,
		OrderNumber:       entry.OrderNumber,
		InitialPickupDate: entry.InitialPickupDate,
	})
	if err != nil {
		return failed("render", err)
	}

	resp, err := m.sender.Send(ctx, provider.SendRequestDetails{
		InternalMessageID: rec.ID,
		Recipient:         entry.PhoneNumber,
		Content:           body,
	})
	if err = sendError(resp, err); err != nil {
		return failed("send", domain.Downstream("send sms", err))
	}

	log.InfoContext(ctx, "Reminder sent", "reminder_id", rec.ID, "expiration_date", rec.ExpirationDate)
	m.events.Emit(ctx, domain.SubjectReminderCreated, entry.PhoneNumber, entry.OrderNumber, map[string]any{
		"reminderId":     rec.ID,
		"expirationDate": rec.ExpirationDate,
	})
	return ReminderOutcome{Customer: entry, Status: OutcomeSent, ReminderID: rec.ID}
}

// Delete removes every reminder for the order/phone pair. It returns domain.ErrNotFound when
// nothing matches.
func (m *ReminderManager) Delete(ctx context.Context, orderNumber, phoneNumber string) (int, error) {
	matches, err := m.reminders.FindByOrderAndPhone(ctx, orderNumber, phoneNumber)
	if err != nil {
		return 0, domain.Downstream("find reminders", err)
	}
	if len(matches) == 0 {
		return 0, domain.ErrNotFound
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, rec := range matches {
		g.Go(func() error {
			err := m.reminders.Delete(gctx, rec.ID)
			// Already gone is fine; another request deleted it first.
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, domain.Downstream("delete reminders", err)
	}

	remindersDeletedCounter.Add(float64(len(matches)))
	m.logger.InfoContext(ctx, "Reminders deleted", "order_number", orderNumber, "phone_number", phoneNumber, "count", len(matches))
	return len(matches), nil
}
