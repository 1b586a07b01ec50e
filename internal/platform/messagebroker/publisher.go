package messagebroker

import (
	"context"
	"log/slog"
)

// Publisher delivers an already-encoded event to a subject (NATS) or routing key (AMQP).
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close()
}

// NoopPublisher drops every event. Used when EVENT_BUS is "none".
type NoopPublisher struct {
	logger *slog.Logger
}

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger.With("component", "noop_publisher")}
}

func (p *NoopPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	p.logger.DebugContext(ctx, "Event bus disabled, dropping event", "subject", subject, "bytes", len(data))
	return nil
}

func (p *NoopPublisher) Close() {}
