package provider

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrSimulatedFailure is returned for recipients registered with FailFor.
var ErrSimulatedFailure = errors.New("mock provider simulated send failure")

// MockSMSProvider records sends in memory instead of contacting a carrier.
type MockSMSProvider struct {
	logger         *slog.Logger
	SimulatedDelay time.Duration

	mu       sync.Mutex
	failFor  map[string]bool
	sent     []MessageLog
	attempts int
}

func NewMockSMSProvider(logger *slog.Logger, delay time.Duration) *MockSMSProvider {
	return &MockSMSProvider{
		logger:         logger.With("provider", "mock"),
		SimulatedDelay: delay,
		failFor:        make(map[string]bool),
	}
}

// FailFor makes every send to recipient fail.
func (p *MockSMSProvider) FailFor(recipient string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failFor[recipient] = true
}

func (p *MockSMSProvider) Send(ctx context.Context, details SendRequestDetails) (*SendResponseDetails, error) {
	timer := prometheus.NewTimer(smsProviderRequestDurationHist.WithLabelValues(p.GetName(), "send"))
	defer timer.ObserveDuration()

	if p.SimulatedDelay > 0 {
		select {
		case <-time.After(p.SimulatedDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts++

	if p.failFor[details.Recipient] {
		smsProviderSendsTotal.WithLabelValues(p.GetName(), "failure").Inc()
		p.logger.WarnContext(ctx, "Simulated send failure", "recipient", details.Recipient)
		return &SendResponseDetails{
			IsSuccess:      false,
			ProviderStatus: "FAILED_MOCK",
			ErrorMessage:   ErrSimulatedFailure.Error(),
		}, ErrSimulatedFailure
	}

	sid := "mock-" + uuid.NewString()
	p.sent = append(p.sent, MessageLog{
		SID:       sid,
		To:        details.Recipient,
		Body:      details.Content,
		Status:    "sent",
		Direction: "outbound-api",
		DateSent:  time.Now().UTC().Format(time.RFC1123Z),
	})
	smsProviderSendsTotal.WithLabelValues(p.GetName(), "success").Inc()
	p.logger.InfoContext(ctx, "SMS sent (simulated)", "recipient", details.Recipient, "provider_message_id", sid)
	return &SendResponseDetails{ProviderMessageID: sid, IsSuccess: true, ProviderStatus: "SENT_MOCK"}, nil
}

// List returns every recorded send; the date range is ignored.
func (p *MockSMSProvider) List(_ context.Context, _, _ time.Time) ([]MessageLog, error) {
	return p.Sent(), nil
}

// Sent returns a copy of the successfully sent messages.
func (p *MockSMSProvider) Sent() []MessageLog {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]MessageLog, len(p.sent))
	copy(out, p.sent)
	return out
}

// Attempts counts every Send call, failed ones included.
func (p *MockSMSProvider) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

func (p *MockSMSProvider) GetName() string {
	return "mock"
}
