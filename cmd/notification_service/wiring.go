package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ordernotify/golang_services/internal/notification_service/app"
	"github.com/ordernotify/golang_services/internal/notification_service/domain"
	"github.com/ordernotify/golang_services/internal/notification_service/provider"
	"github.com/ordernotify/golang_services/internal/notification_service/report"
	"github.com/ordernotify/golang_services/internal/notification_service/repository/mongo"
	"github.com/ordernotify/golang_services/internal/notification_service/repository/postgres"
	"github.com/ordernotify/golang_services/internal/notification_service/repository/sqlite"
	"github.com/ordernotify/golang_services/internal/platform/config"
	"github.com/ordernotify/golang_services/internal/platform/database"
	"github.com/ordernotify/golang_services/internal/platform/lock"
	"github.com/ordernotify/golang_services/internal/platform/messagebroker"
)

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*domain.Store, error) {
	switch cfg.StoreBackend {
	case "postgres":
		pool, err := database.NewDBPool(ctx, cfg.PostgresDSN, database.PoolConfig{
			MaxConns:        cfg.PostgresMaxConns,
			MinConns:        cfg.PostgresMinConns,
			MaxConnLifetime: cfg.PostgresMaxConnLifetime,
			MaxConnIdleTime: cfg.PostgresMaxConnIdleTime,
		})
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool, logger.With("component", "postgres_migrate")); err != nil {
			pool.Close()
			return nil, err
		}
		return postgres.NewStore(pool, logger), nil
	case "sqlite":
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store, err := sqlite.NewStore(ctx, db, logger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return store, nil
	case "mongo":
		return mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
}

func newPublisher(cfg *config.Config, logger *slog.Logger) (messagebroker.Publisher, error) {
	switch cfg.EventBus {
	case "nats":
		nc, err := messagebroker.NewNatsClient(cfg.NATSUrl, serviceName, logger)
		if err != nil {
			return nil, err
		}
		return nc, nil
	case "amqp":
		pub, err := messagebroker.NewAMQPPublisher(cfg.AMQPUrl, cfg.AMQPExchange, logger)
		if err != nil {
			return nil, err
		}
		return pub, nil
	case "", "none":
		return messagebroker.NewNoopPublisher(logger), nil
	default:
		return nil, fmt.Errorf("unsupported event bus %q", cfg.EventBus)
	}
}

// newLocker returns the Redis lease when REDIS_URL is set. closeFn is never nil.
func newLocker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (lock.Locker, func(), error) {
	if cfg.RedisURL == "" {
		return lock.NoopLocker{}, func() {}, nil
	}
	client, err := lock.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return lock.NewRedisLocker(client, serviceName+":", logger), func() { _ = client.Close() }, nil
}

func newSMSProvider(cfg *config.Config, logger *slog.Logger) provider.SMSSenderProvider {
	var p provider.SMSSenderProvider
	switch cfg.SMSProvider {
	case "mock":
		p = provider.NewMockSMSProvider(logger, 0)
	default:
		p = provider.NewTwilioSMSProvider(logger, cfg.TwilioAPIBaseURL, cfg.TwilioAccountSID, cfg.TwilioAuthToken,
			cfg.TwilioPhoneNumber, &http.Client{Timeout: 15 * time.Second})
	}
	return provider.NewRateLimitedProvider(p, cfg.SMSRatePerSecond, cfg.SMSRateBurst)
}

func newReporter(cfg *config.Config, logger *slog.Logger) (app.ExpiredReporter, error) {
	var mailer report.Mailer
	switch cfg.EmailProvider {
	case "smtp":
		mailer = report.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, logger)
	case "resend":
		mailer = report.NewResendMailer(cfg.ResendAPIKey, &http.Client{Timeout: 30 * time.Second}, logger)
	default:
		return report.NewLogReporter(logger), nil
	}

	loc, err := time.LoadLocation(cfg.ReportTZ)
	if err != nil {
		return nil, fmt.Errorf("loading report timezone: %w", err)
	}
	return report.NewEmailReporter(mailer, cfg.ReportFrom, splitList(cfg.ReportTo), loc, logger), nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
