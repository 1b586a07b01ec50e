package postgres

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
)

// NewStore wires the Postgres repositories onto one pool.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *domain.Store {
	return &domain.Store{
		Notifications: NewPgNotificationRepository(pool, logger),
		Reminders:     NewPgReminderRepository(pool, logger),
		OptOuts:       NewPgOptOutRepository(pool, logger),
		Ping:          pool.Ping,
		Close:         pool.Close,
	}
}
