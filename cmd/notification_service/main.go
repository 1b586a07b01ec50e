package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/ordernotify/golang_services/internal/notification_service/app"
	"github.com/ordernotify/golang_services/internal/notification_service/domain"
	"github.com/ordernotify/golang_services/internal/notification_service/templates"
	transport "github.com/ordernotify/golang_services/internal/notification_service/transport/http"
	"github.com/ordernotify/golang_services/internal/platform/config"
	"github.com/ordernotify/golang_services/internal/platform/healthcheck"
	"github.com/ordernotify/golang_services/internal/platform/logger"
)

const (
	serviceName     = "notification_service"
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel).With("service", serviceName)
	appLogger.Info("Starting service...")

	if err := cfg.ValidateNotificationService(); err != nil {
		appLogger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Configuration loaded",
		"log_level", cfg.LogLevel,
		"http_port", cfg.NotificationServicePort,
		"grpc_health_port", cfg.GRPCHealthPort,
		"store_backend", cfg.StoreBackend,
		"event_bus", cfg.EventBus,
		"sms_provider", cfg.SMSProvider,
		"email_provider", cfg.EmailProvider,
		"sweep_lock", cfg.RedisURL != "",
	)

	catalog, err := templates.Load(cfg.TemplatesFile)
	if err != nil {
		appLogger.Error("Failed to load message templates", "error", err)
		os.Exit(1)
	}

	startCtx, startCancel := context.WithTimeout(mainCtx, startupTimeout)
	store, err := openStore(startCtx, cfg, appLogger)
	if err != nil {
		startCancel()
		appLogger.Error("Failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	publisher, err := newPublisher(cfg, appLogger)
	if err != nil {
		startCancel()
		appLogger.Error("Failed to connect event bus", "bus", cfg.EventBus, "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	locker, closeLocker, err := newLocker(startCtx, cfg, appLogger)
	startCancel()
	if err != nil {
		appLogger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer closeLocker()

	reporter, err := newReporter(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to set up expiration report", "error", err)
		os.Exit(1)
	}

	sender := newSMSProvider(cfg, appLogger)
	events := app.NewEventEmitter(publisher, appLogger)
	expiry := time.Duration(cfg.ReminderExpiryDays) * 24 * time.Hour

	dispatcher := app.NewOrderReadyDispatcher(
		app.NewSendFilter(store.OptOuts, store.Notifications),
		store.Notifications, sender, catalog, cfg.SurveyLink, events, appLogger,
	)
	reminders := app.NewReminderManager(store.Reminders, sender, catalog, expiry, events, appLogger)
	sweeper := app.NewExpirationSweeper(store.Reminders, reporter, locker, cfg.SweepLockTTL, events, appLogger)
	inbound := app.NewInboundReplyService(store.OptOuts, store.Reminders, catalog.Replies, events, appLogger)

	router := transport.NewRouter(transport.RouterConfig{
		APIKey: cfg.APIKey,
		CronTrust: transport.CronTrust{
			Secret:           cfg.CronSecret,
			TrustedHeader:    cfg.CronTrustedHeader,
			TrustedUserAgent: cfg.CronTrustedUserAgent,
		},
		Notification: transport.NewNotificationHandler(
			app.NewBatchValidator(), dispatcher, reminders,
			app.NewReceiptSender(sender, catalog, appLogger),
			app.NewMessageLogService(sender, appLogger),
			appLogger,
		),
		Webhook: transport.NewWebhookHandler(inbound, catalog.Replies.InternalError, appLogger),
		Cron:    transport.NewCronHandler(sweeper, appLogger),
		Ready:   store.Ping,
		Logger:  appLogger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.NotificationServicePort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		appLogger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed", "error", err)
			return err
		}
		return nil
	})

	if cfg.GRPCHealthPort > 0 {
		startHealthServer(groupCtx, g, cfg.GRPCHealthPort, store, appLogger)
	}

	g.Go(func() error {
		stopSignal := make(chan os.Signal, 1)
		signal.Notify(stopSignal, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-stopSignal:
			appLogger.Info("Received termination signal", "signal", sig.String())
			mainCancel()
			return nil
		case <-groupCtx.Done():
			return nil
		}
	})

	g.Go(func() error {
		<-groupCtx.Done()
		appLogger.Info("Initiating graceful shutdown of HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("HTTP server shutdown error", "error", err)
		}
		appLogger.Info("HTTP server has been shut down gracefully.")
		return nil
	})

	appLogger.Info("Service is ready and running.")

	if err := g.Wait(); err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, grpc.ErrServerStopped) {
			appLogger.Error("Service group encountered an error", "error", err)
		}
	}

	appLogger.Info("Service shutdown complete.")
}

// startHealthServer serves grpc.health.v1 backed by the store ping.
func startHealthServer(ctx context.Context, g *errgroup.Group, port int, store *domain.Store, appLogger *slog.Logger) {
	health := healthcheck.NewServer(serviceName, appLogger, store.Ping)

	g.Go(func() error {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			return fmt.Errorf("failed to listen on port %d: %w", port, err)
		}
		return health.Serve(lis)
	})
	g.Go(func() error {
		health.Monitor(ctx, 15*time.Second)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		health.Stop()
		return nil
	})
}
