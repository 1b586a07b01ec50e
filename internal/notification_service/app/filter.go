package app

import (
	"context"
	"errors"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
)

// Skip reasons reported to the caller of /sms.
const (
	ReasonOptedOut  = "opted out"
	ReasonDuplicate = "duplicate message"
)

// Decision is the filter verdict for one recipient. Reason is set when Proceed is false.
type Decision struct {
	Proceed        bool
	Reason         string
	IdempotencyKey string
}

// SendFilter suppresses sends to opted-out numbers and repeats of an already sent notification.
type SendFilter struct {
	optOuts       domain.OptOutRepository
	notifications domain.NotificationRepository
}

func NewSendFilter(optOuts domain.OptOutRepository, notifications domain.NotificationRepository) *SendFilter {
	return &SendFilter{optOuts: optOuts, notifications: notifications}
}

// Check looks up the opt-out first, then the idempotency key. The result is advisory; the
// insert that follows is what actually guarantees a single send.
func (f *SendFilter) Check(ctx context.Context, phoneNumber, orderNumber, date string) (Decision, error) {
	key := domain.IdempotencyKey(phoneNumber, orderNumber, date)

	optedOut, err := f.optOuts.IsOptedOut(ctx, phoneNumber)
	if err != nil {
		return Decision{}, domain.Downstream("check opt-out", err)
	}
	if optedOut {
		return Decision{Reason: ReasonOptedOut, IdempotencyKey: key}, nil
	}

	_, err = f.notifications.FindByIdempotencyKey(ctx, key)
	switch {
	case err == nil:
		return Decision{Reason: ReasonDuplicate, IdempotencyKey: key}, nil
	case errors.Is(err, domain.ErrNotFound):
		return Decision{Proceed: true, IdempotencyKey: key}, nil
	default:
		return Decision{}, domain.Downstream("check idempotency key", err)
	}
}
