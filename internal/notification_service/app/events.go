package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
	"github.com/ordernotify/golang_services/internal/platform/messagebroker"
)

// EventEmitter publishes domain events. Publishing is best effort: failures are logged and counted
// but never returned to the caller.
type EventEmitter struct {
	publisher messagebroker.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewEventEmitter(publisher messagebroker.Publisher, logger *slog.Logger) *EventEmitter {
	return &EventEmitter{
		publisher: publisher,
		logger:    logger.With("component", "event_emitter"),
		now:       time.Now,
	}
}

func (e *EventEmitter) Emit(ctx context.Context, subject, phoneNumber, orderNumber string, data map[string]any) {
	if e == nil || e.publisher == nil {
		return
	}
	evt := domain.Event{
		ID:          uuid.NewString(),
		Subject:     subject,
		OccurredAt:  e.now().UTC(),
		PhoneNumber: phoneNumber,
		OrderNumber: orderNumber,
		Data:        data,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to marshal event", "error", err, "subject", subject)
		eventsPublishedCounter.WithLabelValues(subject, "error").Inc()
		return
	}
	if err := e.publisher.Publish(ctx, subject, payload); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish event", "error", err, "subject", subject, "event_id", evt.ID)
		eventsPublishedCounter.WithLabelValues(subject, "error").Inc()
		return
	}
	eventsPublishedCounter.WithLabelValues(subject, "ok").Inc()
}
