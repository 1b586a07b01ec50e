package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
	"github.com/ordernotify/golang_services/internal/notification_service/provider"
	"github.com/ordernotify/golang_services/internal/notification_service/templates"
)

// Per-recipient outcome statuses.
const (
	OutcomeSent    = "sent"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// OrderReadyOutcome is the result for one entry of a /sms batch.
type OrderReadyOutcome struct {
	Customer domain.OrderReadyEntry `json:"customer"`
	Status   string                 `json:"status"`
	Reason   string                 `json:"reason,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// DispatchSummary aggregates a batch. Outcomes keep the input order.
type DispatchSummary struct {
	Outcomes []OrderReadyOutcome
	Sent     int
	Skipped  []OrderReadyOutcome
	Failed   []OrderReadyOutcome
}

// Success is true when at least one message went out.
func (s *DispatchSummary) Success() bool { return s.Sent > 0 }

// OrderReadyDispatcher sends "order ready" messages to a validated batch of customers.
type OrderReadyDispatcher struct {
	filter        *SendFilter
	notifications domain.NotificationRepository
	sender        provider.SMSSenderProvider
	catalog       *templates.Catalog
	surveyLink    string
	events        *EventEmitter
	logger        *slog.Logger
	now           func() time.Time
	newID         func() string
}

func NewOrderReadyDispatcher(
	filter *SendFilter,
	notifications domain.NotificationRepository,
	sender provider.SMSSenderProvider,
	catalog *templates.Catalog,
	surveyLink string,
	events *EventEmitter,
	logger *slog.Logger,
) *OrderReadyDispatcher {
	return &OrderReadyDispatcher{
		filter:        filter,
		notifications: notifications,
		sender:        sender,
		catalog:       catalog,
		surveyLink:    surveyLink,
		events:        events,
		logger:        logger.With("service", "order_ready_dispatcher"),
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

// Dispatch runs every entry concurrently and waits for all of them. Per-entry failures are
// reported in the outcomes, not in the returned error.
func (d *OrderReadyDispatcher) Dispatch(ctx context.Context, entries []domain.OrderReadyEntry) (*DispatchSummary, error) {
	outcomes := make([]OrderReadyOutcome, len(entries))

	var g errgroup.Group
	for i := range entries {
		g.Go(func() error {
			outcomes[i] = d.dispatchOne(ctx, entries[i])
			return nil
		})
	}
	_ = g.Wait()

	summary := &DispatchSummary{Outcomes: outcomes}
	for _, o := range outcomes {
		dispatchOutcomesCounter.WithLabelValues(o.Status, o.Reason).Inc()
		switch o.Status {
		case OutcomeSent:
			summary.Sent++
		case OutcomeSkipped:
			summary.Skipped = append(summary.Skipped, o)
		case OutcomeFailed:
			summary.Failed = append(summary.Failed, o)
		}
	}
	d.logger.InfoContext(ctx, "Order-ready batch processed",
		"entries", len(entries), "sent", summary.Sent, "skipped", len(summary.Skipped), "failed", len(summary.Failed))
	return summary, nil
}

func (d *OrderReadyDispatcher) dispatchOne(ctx context.Context, entry domain.OrderReadyEntry) OrderReadyOutcome {
	log := d.logger.With("phone_number", entry.PhoneNumber, "order_number", entry.OrderNumber)
	failed := func(stage string, err error) OrderReadyOutcome {
		log.ErrorContext(ctx, "Order-ready notification failed", "stage", stage, "error", err)
		return OrderReadyOutcome{Customer: entry, Status: OutcomeFailed, Error: err.Error()}
	}

	decision, err := d.filter.Check(ctx, entry.PhoneNumber, entry.OrderNumber, entry.Date)
	if err != nil {
		return failed("filter", err)
	}
	if !decision.Proceed {
		log.InfoContext(ctx, "Skipping order-ready notification", "reason", decision.Reason)
		return OrderReadyOutcome{Customer: entry, Status: OutcomeSkipped, Reason: decision.Reason}
	}

	rec := &domain.NotificationRecord{
		ID:             d.newID(),
		Name:           entry.Name,
		PhoneNumber:    entry.PhoneNumber,
		OrderNumber:    entry.OrderNumber,
		Date:           entry.Date,
		IdempotencyKey: decision.IdempotencyKey,
		Status:         domain.NotificationStatusSent,
		Route:          "/sms",
		ExpectingReply: false,
		SentAt:         d.now().UTC(),
	}
	inserted, err := d.notifications.CreateIfAbsent(ctx, rec)
	if err != nil {
		return failed("persist", domain.Downstream("store notification", err))
	}
	if !inserted {
		// A concurrent request for the same key won the insert.
		log.InfoContext(ctx, "Skipping order-ready notification", "reason", ReasonDuplicate)
		return OrderReadyOutcome{Customer: entry, Status: OutcomeSkipped, Reason: ReasonDuplicate}
	}

	body, err := d.catalog.OrderReady(templates.MessageData{
		Name:        entry.Name,
		OrderNumber: entry.OrderNumber,
		Date:        entry.Date,
		SurveyLink:  d.surveyLink,
	})
	if err != nil {
		return failed("render", err)
	}

	resp, err := d.sender.Send(ctx, provider.SendRequestDetails{
		InternalMessageID: rec.ID,
		Recipient:         entry.PhoneNumber,
		Content:           body,
	})
	if err = sendError(resp, err); err != nil {
		return failed("send", domain.Downstream("send sms", err))
	}

	log.InfoContext(ctx, "Order-ready notification sent", "provider_message_id", resp.ProviderMessageID)
	d.events.Emit(ctx, domain.SubjectNotificationSent, entry.PhoneNumber, entry.OrderNumber, map[string]any{
		"notificationId":    rec.ID,
		"providerMessageId": resp.ProviderMessageID,
		"date":              entry.Date,
	})
	return OrderReadyOutcome{Customer: entry, Status: OutcomeSent}
}
