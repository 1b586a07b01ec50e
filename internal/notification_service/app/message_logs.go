package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
	"github.com/ordernotify/golang_services/internal/notification_service/provider"
)

var dateRangeLayouts = []string{time.RFC3339, "2006-01-02", "01/02/2006"}

// MessageLogService reads message history from the SMS transport.
type MessageLogService struct {
	sender provider.SMSSenderProvider
	logger *slog.Logger
}

func NewMessageLogService(sender provider.SMSSenderProvider, logger *slog.Logger) *MessageLogService {
	return &MessageLogService{sender: sender, logger: logger.With("service", "message_logs")}
}

// List takes a two-element [after, before] range. Dates may be RFC 3339, YYYY-MM-DD or MM/DD/YYYY.
func (s *MessageLogService) List(ctx context.Context, dateRange []string) ([]provider.MessageLog, error) {
	if len(dateRange) != 2 {
		return nil, domain.NewValidationError("Invalid request: dateRange must contain a start and an end date")
	}
	after, ok := parseRangeDate(dateRange[0])
	if !ok {
		return nil, domain.NewValidationError("Invalid request: unrecognized date %q", dateRange[0])
	}
	before, ok := parseRangeDate(dateRange[1])
	if !ok {
		return nil, domain.NewValidationError("Invalid request: unrecognized date %q", dateRange[1])
	}
	if before.Before(after) {
		return nil, domain.NewValidationError("Invalid request: dateRange end is before its start")
	}

	logs, err := s.sender.List(ctx, after, before)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list messages", "error", err)
		return nil, domain.Downstream("list messages", err)
	}
	if logs == nil {
		logs = []provider.MessageLog{}
	}
	return logs, nil
}

func parseRangeDate(s string) (time.Time, bool) {
	for _, layout := range dateRangeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
