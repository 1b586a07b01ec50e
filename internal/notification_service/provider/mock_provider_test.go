package provider

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSMSProvider_RecordsAndFails(t *testing.T) {
	p := NewMockSMSProvider(discardLogger(), 0)
	p.FailFor("+14445550000")

	var wg sync.WaitGroup
	for _, to := range []string{"+14445556666", "+14445557777", "+14445550000"} {
		wg.Add(1)
		go func(to string) {
			defer wg.Done()
			_, _ = p.Send(context.Background(), SendRequestDetails{Recipient: to, Content: "hi"})
		}(to)
	}
	wg.Wait()

	assert.Equal(t, 3, p.Attempts())
	assert.Len(t, p.Sent(), 2)

	_, err := p.Send(context.Background(), SendRequestDetails{Recipient: "+14445550000"})
	assert.ErrorIs(t, err, ErrSimulatedFailure)

	logs, err := p.List(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestMockSMSProvider_DelayHonoursContext(t *testing.T) {
	p := NewMockSMSProvider(discardLogger(), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Send(ctx, SendRequestDetails{Recipient: "+14445556666"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, p.Attempts())
}

func TestRateLimitedProvider(t *testing.T) {
	inner := NewMockSMSProvider(discardLogger(), 0)
	assert.Same(t, inner, NewRateLimitedProvider(inner, 0, 1).(*MockSMSProvider))

	limited := NewRateLimitedProvider(inner, 1, 1)
	assert.Equal(t, "mock", limited.GetName())

	_, err := limited.Send(context.Background(), SendRequestDetails{Recipient: "+14445556666"})
	require.NoError(t, err)

	// the bucket is empty, so the next send must wait past this deadline
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = limited.Send(ctx, SendRequestDetails{Recipient: "+14445556666"})
	assert.Error(t, err)
	assert.Equal(t, 1, inner.Attempts())
}
