package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
	"github.com/ordernotify/golang_services/internal/notification_service/templates"
)

// Intent is what an inbound SMS asks for.
type Intent string

const (
	IntentMalformed    Intent = "malformed"
	IntentOptOut       Intent = "opt_out"
	IntentPickup       Intent = "pickup"
	IntentDonate       Intent = "donate"
	IntentUnrecognized Intent = "unrecognized"
)

var optOutKeywords = map[string]struct{}{
	"stop":        {},
	"unsubscribe": {},
	"cancel":      {},
	"end":         {},
	"quit":        {},
}

// Classify maps an inbound message to an intent. It has no side effects.
func Classify(fromNumber, body string) Intent {
	from := strings.TrimSpace(fromNumber)
	text := strings.ToLower(strings.TrimSpace(body))
	if from == "" || text == "" {
		return IntentMalformed
	}
	// Keywords from a number we cannot store are not acted on.
	if !domain.IsCanonicalPhoneNumber(from) {
		return IntentUnrecognized
	}
	if _, ok := optOutKeywords[text]; ok {
		return IntentOptOut
	}
	switch text {
	case "yes":
		return IntentPickup
	case "no":
		return IntentDonate
	}
	return IntentUnrecognized
}

// InboundReplyService applies an inbound SMS to the store and picks the auto-reply.
type InboundReplyService struct {
	optOuts   domain.OptOutRepository
	reminders domain.ReminderRepository
	replies   templates.Replies
	events    *EventEmitter
	logger    *slog.Logger
	now       func() time.Time
}

func NewInboundReplyService(
	optOuts domain.OptOutRepository,
	reminders domain.ReminderRepository,
	replies templates.Replies,
	events *EventEmitter,
	logger *slog.Logger,
) *InboundReplyService {
	return &InboundReplyService{
		optOuts:   optOuts,
		reminders: reminders,
		replies:   replies,
		events:    events,
		logger:    logger.With("service", "inbound_reply"),
		now:       time.Now,
	}
}

// Handle always returns a reply text. Store failures are logged and answered with the
// internal-error reply.
func (s *InboundReplyService) Handle(ctx context.Context, fromNumber, body string) (Intent, string) {
	intent := Classify(fromNumber, body)
	inboundMessagesCounter.WithLabelValues(string(intent)).Inc()

	from := strings.TrimSpace(fromNumber)
	log := s.logger.With("from", from, "intent", intent)
	if intent == IntentMalformed {
		log.WarnContext(ctx, "Malformed inbound message")
		return intent, s.replies.Malformed
	}
	s.events.Emit(ctx, domain.SubjectInboundKeywordPrefix+string(intent), from, "", map[string]any{
		"body": strings.TrimSpace(body),
	})

	switch intent {
	case IntentOptOut:
		now := s.now().UTC()
		if err := s.optOuts.Upsert(ctx, &domain.OptOutRecord{PhoneNumber: from, OptedOut: true, OptedOutAt: now}); err != nil {
			log.ErrorContext(ctx, "Failed to record opt-out", "error", err)
			return intent, s.replies.InternalError
		}
		log.InfoContext(ctx, "Opt-out recorded")
		s.events.Emit(ctx, domain.SubjectOptOutRecorded, from, "", nil)
		return intent, s.replies.OptedOut

	case IntentPickup, IntentDonate:
		ack, reply := domain.AcknowledgementPickup, s.replies.PickupConfirmed
		if intent == IntentDonate {
			ack, reply = domain.AcknowledgementDonate, s.replies.DonateConfirmed
		}
		updated, err := s.acknowledge(ctx, from, ack)
		if err != nil {
			log.ErrorContext(ctx, "Failed to record acknowledgement", "error", err)
			return intent, s.replies.InternalError
		}
		if updated == 0 {
			log.InfoContext(ctx, "No reminder found for inbound acknowledgement")
			return intent, s.replies.NotFound
		}
		log.InfoContext(ctx, "Acknowledgement recorded", "acknowledgement", ack, "reminders", updated)
		return intent, reply

	default:
		return intent, s.replies.Unrecognized
	}
}

func (s *InboundReplyService) acknowledge(ctx context.Context, phoneNumber string, ack domain.Acknowledgement) (int, error) {
	matches, err := s.reminders.FindByPhone(ctx, phoneNumber)
	if err != nil {
		return 0, domain.Downstream("find reminders by phone", err)
	}
	if len(matches) == 0 {
		return 0, nil
	}

	now := s.now().UTC()
	g, gctx := errgroup.WithContext(ctx)
	for _, rec := range matches {
		g.Go(func() error {
			return s.reminders.SetAcknowledgement(gctx, rec.ID, ack, now)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, domain.Downstream("set acknowledgement", err)
	}

	for _, rec := range matches {
		s.events.Emit(ctx, domain.SubjectReminderAcknowledged, phoneNumber, rec.OrderNumber, map[string]any{
			"reminderId":      rec.ID,
			"acknowledgement": string(ack),
		})
	}
	return len(matches), nil
}
