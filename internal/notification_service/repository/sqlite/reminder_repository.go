package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
)

const reminderColumns = `id, name, phone_number, order_number, initial_pickup_date, reminder_sent_date,
	expiration_date, status, acknowledgement, sent_from_route, expecting_reply, last_updated`

type ReminderRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *ReminderRepository) Create(ctx context.Context, rec *domain.ReminderRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reminders (`+reminderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.PhoneNumber, rec.OrderNumber, rec.InitialPickupDate, toNanos(rec.ReminderSentDate),
		toNanos(rec.ExpirationDate), string(rec.Status), string(rec.Acknowledgement), rec.SentFromRoute,
		rec.ExpectingReply, toNanos(rec.LastUpdated),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error inserting reminder", "error", err, "reminder_id", rec.ID)
		return fmt.Errorf("inserting reminder: %w", err)
	}
	return nil
}

func (r *ReminderRepository) FindByOrderAndPhone(ctx context.Context, orderNumber, phoneNumber string) ([]*domain.ReminderRecord, error) {
	return r.list(ctx, "finding reminders by order and phone",
		`SELECT `+reminderColumns+` FROM reminders WHERE order_number = ? AND phone_number = ?`, orderNumber, phoneNumber)
}

func (r *ReminderRepository) FindByPhone(ctx context.Context, phoneNumber string) ([]*domain.ReminderRecord, error) {
	return r.list(ctx, "finding reminders by phone",
		`SELECT `+reminderColumns+` FROM reminders WHERE phone_number = ?`, phoneNumber)
}

func (r *ReminderRepository) FindExpired(ctx context.Context, now time.Time) ([]*domain.ReminderRecord, error) {
	return r.list(ctx, "finding expired reminders",
		`SELECT `+reminderColumns+` FROM reminders WHERE expiration_date < ? AND status = ? ORDER BY expiration_date`,
		toNanos(now), string(domain.ReminderStatusReminded))
}

func (r *ReminderRepository) list(ctx context.Context, op, query string, args ...any) ([]*domain.ReminderRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*domain.ReminderRecord
	for rows.Next() {
		var rec domain.ReminderRecord
		var status, ack string
		var sent, expires, updated int64
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.PhoneNumber, &rec.OrderNumber, &rec.InitialPickupDate, &sent,
			&expires, &status, &ack, &rec.SentFromRoute, &rec.ExpectingReply, &updated); err != nil {
			return nil, fmt.Errorf("%s: scanning row: %w", op, err)
		}
		rec.ReminderSentDate = fromNanos(sent)
		rec.ExpirationDate = fromNanos(expires)
		rec.LastUpdated = fromNanos(updated)
		rec.Status = domain.ReminderStatus(status)
		rec.Acknowledgement = domain.Acknowledgement(ack)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterating rows: %w", op, err)
	}
	return out, nil
}

func (r *ReminderRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting reminder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReminderRepository) MarkExpired(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET status = ?, last_updated = ? WHERE id = ? AND status = ?`,
		string(domain.ReminderStatusExpired), toNanos(at), id, string(domain.ReminderStatusReminded),
	)
	if err != nil {
		return false, fmt.Errorf("expiring reminder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("expiring reminder: %w", err)
	}
	return n == 1, nil
}

func (r *ReminderRepository) SetAcknowledgement(ctx context.Context, id string, ack domain.Acknowledgement, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET acknowledgement = ?, last_updated = ? WHERE id = ?`,
		string(ack), toNanos(at), id,
	)
	if err != nil {
		return fmt.Errorf("updating acknowledgement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
