package provider

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedProvider throttles Send to the sending number's throughput. List is not throttled.
type RateLimitedProvider struct {
	next    SMSSenderProvider
	limiter *rate.Limiter
}

// NewRateLimitedProvider returns next unchanged when perSecond <= 0.
func NewRateLimitedProvider(next SMSSenderProvider, perSecond float64, burst int) SMSSenderProvider {
	if perSecond <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (p *RateLimitedProvider) Send(ctx context.Context, details SendRequestDetails) (*SendResponseDetails, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for send slot: %w", err)
	}
	return p.next.Send(ctx, details)
}

func (p *RateLimitedProvider) List(ctx context.Context, after, before time.Time) ([]MessageLog, error) {
	return p.next.List(ctx, after, before)
}

func (p *RateLimitedProvider) GetName() string {
	return p.next.GetName()
}
