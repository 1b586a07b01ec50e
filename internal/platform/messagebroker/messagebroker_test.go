package messagebroker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNatsConn struct {
	subjects []string
	err      error
	drained  bool
}

func (f *fakeNatsConn) Publish(subject string, data []byte) error {
	f.subjects = append(f.subjects, subject)
	return f.err
}
func (f *fakeNatsConn) Drain() error   { f.drained = true; return nil }
func (f *fakeNatsConn) IsClosed() bool { return false }

type fakeChannel struct {
	mu       sync.Mutex
	keys     []string
	messages []amqp.Publishing
	err      error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, exchange+"/"+key)
	f.messages = append(f.messages, msg)
	return f.err
}
func (f *fakeChannel) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNatsClient_Publish(t *testing.T) {
	conn := &fakeNatsConn{}
	client := &NatsClient{conn: conn, logger: discardLogger()}

	require.NoError(t, client.Publish(context.Background(), "optout.recorded", []byte(`{}`)))
	assert.Equal(t, []string{"optout.recorded"}, conn.subjects)

	conn.err = errors.New("connection closed")
	err := client.Publish(context.Background(), "reminder.acknowledged", nil)
	assert.ErrorContains(t, err, "nats publish reminder.acknowledged")

	client.Close()
	assert.True(t, conn.drained)
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{ch: ch, exchange: "order_notifications", logger: discardLogger()}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Publish(context.Background(), "notification.sent", []byte(`{"ok":true}`)))
		}()
	}
	wg.Wait()

	require.Len(t, ch.messages, 5)
	assert.Equal(t, "order_notifications/notification.sent", ch.keys[0])
	assert.Equal(t, "application/json", ch.messages[0].ContentType)
	assert.Equal(t, amqp.Persistent, ch.messages[0].DeliveryMode)
	assert.NotEmpty(t, ch.messages[0].MessageId)

	ch.err = errors.New("channel closed")
	assert.ErrorContains(t, p.Publish(context.Background(), "x", nil), "amqp publish x")
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher(discardLogger())
	assert.NoError(t, p.Publish(context.Background(), "anything", []byte("x")))
	p.Close()
}
