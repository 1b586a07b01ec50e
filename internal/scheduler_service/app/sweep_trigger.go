package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ordernotify/golang_services/internal/platform/crontoken"
	"github.com/ordernotify/golang_services/internal/scheduler_service/domain"
)

// TriggerConfig holds what the trigger needs to reach the sweep endpoint.
type TriggerConfig struct {
	EndpointURL string
	Secret      string
	TokenTTL    time.Duration
	UserAgent   string
}

// SweepTrigger calls the notification service's expiration sweep with a signed scheduler token.
type SweepTrigger struct {
	cfg    TriggerConfig
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

func NewSweepTrigger(cfg TriggerConfig, client *http.Client, logger *slog.Logger) *SweepTrigger {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 5 * time.Minute
	}
	return &SweepTrigger{
		cfg:    cfg,
		client: client,
		logger: logger.With("component", "sweep_trigger"),
		now:    time.Now,
	}
}

type sweepResponse struct {
	Message       string            `json:"message"`
	ExpiredOrders []json.RawMessage `json:"expiredOrders"`
}

// Trigger performs one sweep. A 409 (sweep already running elsewhere) is reported as a
// skipped run, not an error.
func (t *SweepTrigger) Trigger(ctx context.Context) (*domain.SweepRun, error) {
	run := &domain.SweepRun{StartedAt: t.now().UTC(), Status: domain.RunFailed}
	timer := time.Now()
	defer func() {
		run.Duration = time.Since(timer)
		sweepTriggersCounter.WithLabelValues(string(run.Status)).Inc()
		sweepTriggerDurationHist.WithLabelValues(string(run.Status)).Observe(run.Duration.Seconds())
	}()

	token, err := crontoken.Sign(t.cfg.Secret, t.cfg.TokenTTL, run.StartedAt)
	if err != nil {
		return run, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.EndpointURL, nil)
	if err != nil {
		return run, fmt.Errorf("building sweep request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if t.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", t.cfg.UserAgent)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.ErrorContext(ctx, "Sweep endpoint unreachable", "url", t.cfg.EndpointURL, "error", err)
		return run, fmt.Errorf("calling sweep endpoint: %w", err)
	}
	defer resp.Body.Close()

	run.HTTPStatus = resp.StatusCode
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return run, fmt.Errorf("reading sweep response: %w", err)
	}
	var parsed sweepResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &parsed); err != nil {
			t.logger.WarnContext(ctx, "Sweep response is not JSON", "status", resp.StatusCode, "error", err)
		}
	}
	run.Message = parsed.Message

	switch {
	case resp.StatusCode == http.StatusConflict:
		run.Status = domain.RunSkipped
		t.logger.InfoContext(ctx, "Sweep already in progress, skipping", "message", run.Message)
		return run, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		t.logger.ErrorContext(ctx, "Sweep endpoint rejected the scheduler token", "status", resp.StatusCode)
		return run, fmt.Errorf("%w: status %d", domain.ErrSweepRejected, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		t.logger.ErrorContext(ctx, "Sweep failed", "status", resp.StatusCode, "message", run.Message)
		return run, fmt.Errorf("%w: status %d: %s", domain.ErrSweepFailed, resp.StatusCode, run.Message)
	}

	run.Status = domain.RunCompleted
	run.Expired = len(parsed.ExpiredOrders)
	sweepExpiredGauge.Set(float64(run.Expired))
	t.logger.InfoContext(ctx, "Sweep completed", "expired", run.Expired, "message", run.Message)
	return run, nil
}
