package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
)

// EmailReporter emails the expiration report through a Mailer.
type EmailReporter struct {
	mailer   Mailer
	from     string
	to       []string
	location *time.Location
	logger   *slog.Logger
}

func NewEmailReporter(mailer Mailer, from string, to []string, location *time.Location, logger *slog.Logger) *EmailReporter {
	return &EmailReporter{
		mailer:   mailer,
		from:     from,
		to:       to,
		location: location,
		logger:   logger.With("component", "email_reporter"),
	}
}

func (r *EmailReporter) ReportExpired(ctx context.Context, records []*domain.ReminderRecord) error {
	rep, err := Build(records, r.location)
	if err != nil {
		reportSendsCounter.WithLabelValues(r.mailer.Name(), "render_error").Inc()
		return err
	}
	err = r.mailer.Send(ctx, Email{
		From:        r.from,
		To:          r.to,
		Subject:     rep.Subject,
		HTML:        rep.HTML,
		Text:        rep.Text,
		Attachments: []Attachment{{Filename: AttachmentFilename, Content: rep.CSV}},
	})
	if err != nil {
		reportSendsCounter.WithLabelValues(r.mailer.Name(), "error").Inc()
		return err
	}
	reportSendsCounter.WithLabelValues(r.mailer.Name(), "ok").Inc()
	r.logger.InfoContext(ctx, "Expiration report sent", "records", len(records), "mailer", r.mailer.Name())
	return nil
}

// LogReporter only logs the report. Used when no email provider is configured.
type LogReporter struct {
	logger *slog.Logger
}

func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger.With("component", "log_reporter")}
}

func (r *LogReporter) ReportExpired(ctx context.Context, records []*domain.ReminderRecord) error {
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	r.logger.InfoContext(ctx, "Expired reminders (email disabled)", "records", len(records), "reminder_ids", ids)
	return nil
}
