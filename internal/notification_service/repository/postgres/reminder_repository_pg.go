package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
)

const reminderColumns = `id, name, phone_number, order_number, initial_pickup_date, reminder_sent_date,
	expiration_date, status, acknowledgement, sent_from_route, expecting_reply, last_updated`

type PgReminderRepository struct {
	db     Querier
	logger *slog.Logger
}

func NewPgReminderRepository(db Querier, logger *slog.Logger) *PgReminderRepository {
	return &PgReminderRepository{db: db, logger: logger.With("component", "reminder_repository_pg")}
}

func (r *PgReminderRepository) Create(ctx context.Context, rec *domain.ReminderRecord) error {
	query := `INSERT INTO reminders (` + reminderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.Name, rec.PhoneNumber, rec.OrderNumber, rec.InitialPickupDate, rec.ReminderSentDate,
		rec.ExpirationDate, string(rec.Status), string(rec.Acknowledgement), rec.SentFromRoute, rec.ExpectingReply, rec.LastUpdated,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error inserting reminder", "error", err, "reminder_id", rec.ID)
		return fmt.Errorf("inserting reminder: %w", err)
	}
	return nil
}

func (r *PgReminderRepository) FindByOrderAndPhone(ctx context.Context, orderNumber, phoneNumber string) ([]*domain.ReminderRecord, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE order_number = $1 AND phone_number = $2`
	return r.list(ctx, "finding reminders by order and phone", query, orderNumber, phoneNumber)
}

func (r *PgReminderRepository) FindByPhone(ctx context.Context, phoneNumber string) ([]*domain.ReminderRecord, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE phone_number = $1`
	return r.list(ctx, "finding reminders by phone", query, phoneNumber)
}

func (r *PgReminderRepository) FindExpired(ctx context.Context, now time.Time) ([]*domain.ReminderRecord, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE expiration_date < $1 AND status = $2 ORDER BY expiration_date`
	return r.list(ctx, "finding expired reminders", query, now, string(domain.ReminderStatusReminded))
}

func (r *PgReminderRepository) list(ctx context.Context, op, query string, args ...any) ([]*domain.ReminderRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error querying reminders", "op", op, "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*domain.ReminderRecord
	for rows.Next() {
		rec, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scanning row: %w", op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterating rows: %w", op, err)
	}
	return out, nil
}

func scanReminder(row pgx.Row) (*domain.ReminderRecord, error) {
	var rec domain.ReminderRecord
	var status, ack string
	err := row.Scan(
		&rec.ID, &rec.Name, &rec.PhoneNumber, &rec.OrderNumber, &rec.InitialPickupDate, &rec.ReminderSentDate,
		&rec.ExpirationDate, &status, &ack, &rec.SentFromRoute, &rec.ExpectingReply, &rec.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	rec.Status = domain.ReminderStatus(status)
	rec.Acknowledgement = domain.Acknowledgement(ack)
	return &rec, nil
}

func (r *PgReminderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error deleting reminder", "error", err, "reminder_id", id)
		return fmt.Errorf("deleting reminder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgReminderRepository) MarkExpired(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE reminders SET status = $1, last_updated = $2 WHERE id = $3 AND status = $4`,
		string(domain.ReminderStatusExpired), at, id, string(domain.ReminderStatusReminded),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error expiring reminder", "error", err, "reminder_id", id)
		return false, fmt.Errorf("expiring reminder: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgReminderRepository) SetAcknowledgement(ctx context.Context, id string, ack domain.Acknowledgement, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE reminders SET acknowledgement = $1, last_updated = $2 WHERE id = $3`,
		string(ack), at, id,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating acknowledgement", "error", err, "reminder_id", id)
		return fmt.Errorf("updating acknowledgement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
