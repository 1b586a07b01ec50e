package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/ordernotify/golang_services/internal/platform/config"
	"github.com/ordernotify/golang_services/internal/platform/healthcheck"
	"github.com/ordernotify/golang_services/internal/platform/logger"
	"github.com/ordernotify/golang_services/internal/scheduler_service/app"
)

const (
	serviceName     = "scheduler_service"
	userAgent       = "order-notification-scheduler"
	sweepTimeout    = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel).With("service", serviceName)
	log.Info("Starting service...")

	if err := cfg.ValidateSchedulerService(); err != nil {
		log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	log.Info("Configuration loaded",
		"sweep_schedule", cfg.SweepSchedule,
		"sweep_endpoint", cfg.SweepEndpointURL,
		"token_ttl", cfg.SchedulerTokenTTL,
	)

	trigger := app.NewSweepTrigger(app.TriggerConfig{
		EndpointURL: cfg.SweepEndpointURL,
		Secret:      cfg.CronSecret,
		TokenTTL:    cfg.SchedulerTokenTTL,
		UserAgent:   userAgent,
	}, nil, log)

	scheduler, err := app.NewSweepScheduler(cfg.SweepSchedule, trigger, sweepTimeout, log)
	if err != nil {
		log.Error("Failed to set up sweep schedule", "error", err)
		os.Exit(1)
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		scheduler.Start()
		log.Info("Sweep scheduler started", "next_run", scheduler.Next(time.Now()))
		<-groupCtx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		scheduler.Stop(stopCtx)
		log.Info("Sweep scheduler stopped.")
		return nil
	})

	if cfg.SchedulerGRPCPort > 0 {
		health := healthcheck.NewServer(serviceName, log)
		g.Go(func() error {
			lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.SchedulerGRPCPort))
			if err != nil {
				return fmt.Errorf("failed to listen on port %d: %w", cfg.SchedulerGRPCPort, err)
			}
			health.Refresh(groupCtx)
			return health.Serve(lis)
		})
		g.Go(func() error {
			<-groupCtx.Done()
			health.Stop()
			return nil
		})
	}

	g.Go(func() error {
		stopSignal := make(chan os.Signal, 1)
		signal.Notify(stopSignal, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-stopSignal:
			log.Info("Received termination signal", "signal", sig.String())
			mainCancel()
			return nil
		case <-groupCtx.Done():
			return nil
		}
	})

	log.Info("Service is ready and running.")

	if err := g.Wait(); err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("Service group encountered an error", "error", err)
		}
	}

	log.Info("Service shutdown complete.")
}
