package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
)

type PgNotificationRepository struct {
	db     Querier
	logger *slog.Logger
}

func NewPgNotificationRepository(db Querier, logger *slog.Logger) *PgNotificationRepository {
	return &PgNotificationRepository{db: db, logger: logger.With("component", "notification_repository_pg")}
}

func (r *PgNotificationRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.NotificationRecord, error) {
	query := `SELECT id, name, phone_number, order_number, order_date, idempotency_key, status, route, expecting_reply, sent_at
		FROM notifications WHERE idempotency_key = $1 LIMIT 1`

	var rec domain.NotificationRecord
	var status string
	err := r.db.QueryRow(ctx, query, key).Scan(
		&rec.ID, &rec.Name, &rec.PhoneNumber, &rec.OrderNumber, &rec.Date,
		&rec.IdempotencyKey, &status, &rec.Route, &rec.ExpectingReply, &rec.SentAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error finding notification by idempotency key", "error", err)
		return nil, fmt.Errorf("finding notification by idempotency key: %w", err)
	}
	rec.Status = domain.NotificationStatus(status)
	return &rec, nil
}

func (r *PgNotificationRepository) CreateIfAbsent(ctx context.Context, rec *domain.NotificationRecord) (bool, error) {
	query := `INSERT INTO notifications (id, name, phone_number, order_number, order_date, idempotency_key, status, route, expecting_reply, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (idempotency_key) DO NOTHING`

	tag, err := r.db.Exec(ctx, query,
		rec.ID, rec.Name, rec.PhoneNumber, rec.OrderNumber, rec.Date,
		rec.IdempotencyKey, string(rec.Status), rec.Route, rec.ExpectingReply, rec.SentAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error inserting notification", "error", err, "order_number", rec.OrderNumber)
		return false, fmt.Errorf("inserting notification: %w", err)
	}
	inserted := tag.RowsAffected() == 1
	if !inserted {
		r.logger.InfoContext(ctx, "Notification with same idempotency key already stored", "order_number", rec.OrderNumber)
	}
	return inserted, nil
}
