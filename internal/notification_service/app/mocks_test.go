package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.NotificationRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotificationRecord), args.Error(1)
}

func (m *MockNotificationRepository) CreateIfAbsent(ctx context.Context, rec *domain.NotificationRecord) (bool, error) {
	args := m.Called(ctx, rec)
	return args.Bool(0), args.Error(1)
}

type MockOptOutRepository struct {
	mock.Mock
}

func (m *MockOptOutRepository) IsOptedOut(ctx context.Context, phoneNumber string) (bool, error) {
	args := m.Called(ctx, phoneNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockOptOutRepository) Upsert(ctx context.Context, rec *domain.OptOutRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) Create(ctx context.Context, rec *domain.ReminderRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockReminderRepository) FindByOrderAndPhone(ctx context.Context, orderNumber, phoneNumber string) ([]*domain.ReminderRecord, error) {
	args := m.Called(ctx, orderNumber, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReminderRecord), args.Error(1)
}

func (m *MockReminderRepository) FindByPhone(ctx context.Context, phoneNumber string) ([]*domain.ReminderRecord, error) {
	args := m.Called(ctx, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReminderRecord), args.Error(1)
}

func (m *MockReminderRepository) FindExpired(ctx context.Context, now time.Time) ([]*domain.ReminderRecord, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReminderRecord), args.Error(1)
}

func (m *MockReminderRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReminderRepository) MarkExpired(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockReminderRepository) SetAcknowledgement(ctx context.Context, id string, ack domain.Acknowledgement, at time.Time) error {
	args := m.Called(ctx, id, ack, at)
	return args.Error(0)
}

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) ReportExpired(ctx context.Context, records []*domain.ReminderRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// recordingPublisher keeps every published subject.
type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return p.err
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) Subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subjects...)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
