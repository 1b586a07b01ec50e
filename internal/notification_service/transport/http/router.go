package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig wires the handlers and the trust settings into one router.
type RouterConfig struct {
	APIKey       string
	CronTrust    CronTrust
	Notification *NotificationHandler
	Webhook      *WebhookHandler
	Cron         *CronHandler
	// Ready is probed by GET /health; nil means always ready.
	Ready          func(ctx context.Context) error
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	r.Use(PrometheusMetricsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ready != nil {
			if err := cfg.Ready(r.Context()); err != nil {
				cfg.Logger.WarnContext(r.Context(), "Health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle(metricsPath, promhttp.Handler())

	// The messaging gateway cannot send an api key.
	r.Post("/inboundMessageWebhook", cfg.Webhook.HandleInboundMessage)

	r.Group(func(protected chi.Router) {
		protected.Use(APIKeyMiddleware(cfg.APIKey, cfg.Logger))
		cfg.Notification.RegisterRoutes(protected)
	})

	r.Route("/api/cron", func(cron chi.Router) {
		cron.Use(CronAuthMiddleware(cfg.CronTrust, cfg.Logger))
		cron.Post("/check-expired-orders", cfg.Cron.CheckExpiredOrders)
		cron.Get("/check-expired-orders", cfg.Cron.CheckExpiredOrders)
	})

	return r
}
