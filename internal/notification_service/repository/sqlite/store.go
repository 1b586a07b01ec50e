// Package sqlite is a single-node store backend. Timestamps are stored as Unix nanoseconds (UTC).
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
)

//go:embed schema.sql
var schema string

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("applying sqlite schema: %w", err)
	}
	return nil
}

// NewStore migrates db and wires the SQLite repositories onto it.
func NewStore(ctx context.Context, db *sql.DB, logger *slog.Logger) (*domain.Store, error) {
	if err := Migrate(ctx, db); err != nil {
		return nil, err
	}
	return &domain.Store{
		Notifications: &NotificationRepository{db: db, logger: logger.With("component", "notification_repository_sqlite")},
		Reminders:     &ReminderRepository{db: db, logger: logger.With("component", "reminder_repository_sqlite")},
		OptOuts:       &OptOutRepository{db: db, logger: logger.With("component", "optout_repository_sqlite")},
		Ping:          db.PingContext,
		Close:         func() { _ = db.Close() },
	}, nil
}

func toNanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

type NotificationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *NotificationRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.NotificationRecord, error) {
	var rec domain.NotificationRecord
	var status string
	var sentAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, phone_number, order_number, order_date, idempotency_key, status, route, expecting_reply, sent_at
		 FROM notifications WHERE idempotency_key = ? LIMIT 1`, key,
	).Scan(&rec.ID, &rec.Name, &rec.PhoneNumber, &rec.OrderNumber, &rec.Date, &rec.IdempotencyKey,
		&status, &rec.Route, &rec.ExpectingReply, &sentAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding notification by idempotency key: %w", err)
	}
	rec.Status = domain.NotificationStatus(status)
	rec.SentAt = fromNanos(sentAt)
	return &rec, nil
}

func (r *NotificationRepository) CreateIfAbsent(ctx context.Context, rec *domain.NotificationRecord) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, name, phone_number, order_number, order_date, idempotency_key, status, route, expecting_reply, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(idempotency_key) DO NOTHING`,
		rec.ID, rec.Name, rec.PhoneNumber, rec.OrderNumber, rec.Date, rec.IdempotencyKey,
		string(rec.Status), rec.Route, rec.ExpectingReply, toNanos(rec.SentAt),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error inserting notification", "error", err)
		return false, fmt.Errorf("inserting notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting notification: %w", err)
	}
	return n == 1, nil
}

type OptOutRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *OptOutRepository) IsOptedOut(ctx context.Context, phoneNumber string) (bool, error) {
	var optedOut bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM opt_outs WHERE phone_number = ? AND opted_out = 1)`, phoneNumber,
	).Scan(&optedOut)
	if err != nil {
		return false, fmt.Errorf("checking opt-out: %w", err)
	}
	return optedOut, nil
}

func (r *OptOutRepository) Upsert(ctx context.Context, rec *domain.OptOutRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO opt_outs (phone_number, opted_out, opted_out_at) VALUES (?, ?, ?)
		 ON CONFLICT(phone_number) DO UPDATE SET opted_out = excluded.opted_out, opted_out_at = excluded.opted_out_at`,
		rec.PhoneNumber, rec.OptedOut, toNanos(rec.OptedOutAt),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error upserting opt-out", "error", err)
		return fmt.Errorf("upserting opt-out: %w", err)
	}
	return nil
}
