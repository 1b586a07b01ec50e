package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
)

type PgOptOutRepository struct {
	db     Querier
	logger *slog.Logger
}

func NewPgOptOutRepository(db Querier, logger *slog.Logger) *PgOptOutRepository {
	return &PgOptOutRepository{db: db, logger: logger.With("component", "optout_repository_pg")}
}

func (r *PgOptOutRepository) IsOptedOut(ctx context.Context, phoneNumber string) (bool, error) {
	var optedOut bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM opt_outs WHERE phone_number = $1 AND opted_out)`,
		phoneNumber,
	).Scan(&optedOut)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error checking opt-out", "error", err)
		return false, fmt.Errorf("checking opt-out: %w", err)
	}
	return optedOut, nil
}

func (r *PgOptOutRepository) Upsert(ctx context.Context, rec *domain.OptOutRecord) error {
	query := `INSERT INTO opt_outs (phone_number, opted_out, opted_out_at) VALUES ($1, $2, $3)
		ON CONFLICT (phone_number) DO UPDATE SET opted_out = EXCLUDED.opted_out, opted_out_at = EXCLUDED.opted_out_at`
	if _, err := r.db.Exec(ctx, query, rec.PhoneNumber, rec.OptedOut, rec.OptedOutAt); err != nil {
		r.logger.ErrorContext(ctx, "Error upserting opt-out", "error", err)
		return fmt.Errorf("upserting opt-out: %w", err)
	}
	return nil
}
