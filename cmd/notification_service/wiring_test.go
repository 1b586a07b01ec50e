package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordernotify/golang_services/internal/notification_service/report"
	"github.com/ordernotify/golang_services/internal/platform/config"
	"github.com/ordernotify/golang_services/internal/platform/lock"
	"github.com/ordernotify/golang_services/internal/platform/messagebroker"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, splitList(" a@x.com, ,b@x.com "))
	assert.Nil(t, splitList(""))
}

func TestOpenStore_SQLiteInMemory(t *testing.T) {
	cfg := &config.Config{StoreBackend: "sqlite", SQLitePath: ":memory:"}
	store, err := openStore(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
	assert.NotNil(t, store.Notifications)
	assert.NotNil(t, store.Reminders)
	assert.NotNil(t, store.OptOuts)
}

func TestOpenStore_Unsupported(t *testing.T) {
	_, err := openStore(context.Background(), &config.Config{StoreBackend: "dynamo"}, testLogger())
	assert.ErrorContains(t, err, `unsupported store backend "dynamo"`)
}

func TestNewPublisher(t *testing.T) {
	pub, err := newPublisher(&config.Config{EventBus: "none"}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &messagebroker.NoopPublisher{}, pub)

	_, err = newPublisher(&config.Config{EventBus: "kafka"}, testLogger())
	assert.Error(t, err)
}

func TestNewLocker_WithoutRedis(t *testing.T) {
	locker, closeFn, err := newLocker(context.Background(), &config.Config{}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, lock.NoopLocker{}, locker)
	closeFn()
}

func TestNewReporter(t *testing.T) {
	r, err := newReporter(&config.Config{EmailProvider: "none"}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &report.LogReporter{}, r)

	r, err = newReporter(&config.Config{
		EmailProvider: "resend",
		ResendAPIKey:  "re_test",
		ReportFrom:    "reports@example.com",
		ReportTo:      "ops@example.com",
		ReportTZ:      "UTC",
	}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &report.EmailReporter{}, r)

	_, err = newReporter(&config.Config{EmailProvider: "smtp", ReportTZ: "Mars/Olympus"}, testLogger())
	assert.ErrorContains(t, err, "loading report timezone")
}
