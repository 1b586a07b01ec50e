package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
	"github.com/ordernotify/golang_services/internal/notification_service/provider"
	"github.com/ordernotify/golang_services/internal/notification_service/templates"
)

type dispatcherFixture struct {
	optOuts       *MockOptOutRepository
	notifications *MockNotificationRepository
	sms           *provider.MockSMSProvider
	publisher     *recordingPublisher
	dispatcher    *OrderReadyDispatcher
}

func newDispatcherFixture() *dispatcherFixture {
	f := &dispatcherFixture{
		optOuts:       new(MockOptOutRepository),
		notifications: new(MockNotificationRepository),
		sms:           provider.NewMockSMSProvider(discardLogger(), 0),
		publisher:     &recordingPublisher{},
	}
	f.dispatcher = NewOrderReadyDispatcher(
		NewSendFilter(f.optOuts, f.notifications),
		f.notifications,
		f.sms,
		templates.Default(),
		"https://example.com/survey",
		NewEventEmitter(f.publisher, discardLogger()),
		discardLogger(),
	)
	f.dispatcher.now = fixedClock(time.Date(2025, 11, 18, 15, 0, 0, 0, time.UTC))
	return f
}

func TestOrderReadyDispatcher_Dispatch_SendsAndPersists(t *testing.T) {
	f := newDispatcherFixture()
	entry := domain.OrderReadyEntry{Name: "Alice", PhoneNumber: "+14445556666", OrderNumber: "1234", Date: "11/18/2025"}
	key := domain.IdempotencyKey(entry.PhoneNumber, entry.OrderNumber, entry.Date)

	f.optOuts.On("IsOptedOut", mock.Anything, entry.PhoneNumber).Return(false, nil)
	f.notifications.On("FindByIdempotencyKey", mock.Anything, key).Return(nil, domain.ErrNotFound)
	f.notifications.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(r *domain.NotificationRecord) bool {
		return r.IdempotencyKey == key && r.Status == domain.NotificationStatusSent && r.Route == "/sms" && !r.ExpectingReply
	})).Return(true, nil)

	summary, err := f.dispatcher.Dispatch(context.Background(), []domain.OrderReadyEntry{entry})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Sent)
	assert.True(t, summary.Success())
	assert.Empty(t, summary.Skipped)

	sent := f.sms.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "+14445556666", sent[0].To)
	assert.Contains(t, sent[0].Body, "Hi Alice, your order #1234 is ready for pickup!")
	assert.Contains(t, sent[0].Body, "https://example.com/survey")
	assert.Equal(t, []string{domain.SubjectNotificationSent}, f.publisher.Subjects())
	f.notifications.AssertExpectations(t)
}

func TestOrderReadyDispatcher_Dispatch_SkipsOptedOutAndDuplicates(t *testing.T) {
	f := newDispatcherFixture()
	optedOut := domain.OrderReadyEntry{Name: "Alice", PhoneNumber: "+14445556666", OrderNumber: "1", Date: "d"}
	duplicate := domain.OrderReadyEntry{Name: "Bob", PhoneNumber: "+14445557777", OrderNumber: "2", Date: "d"}

	f.optOuts.On("IsOptedOut", mock.Anything, optedOut.PhoneNumber).Return(true, nil)
	f.optOuts.On("IsOptedOut", mock.Anything, duplicate.PhoneNumber).Return(false, nil)
	f.notifications.On("FindByIdempotencyKey", mock.Anything, mock.Anything).Return(&domain.NotificationRecord{}, nil)

	summary, err := f.dispatcher.Dispatch(context.Background(), []domain.OrderReadyEntry{optedOut, duplicate})
	require.NoError(t, err)

	assert.Zero(t, summary.Sent)
	assert.False(t, summary.Success())
	require.Len(t, summary.Skipped, 2)
	assert.Equal(t, ReasonOptedOut, summary.Skipped[0].Reason)
	assert.Equal(t, ReasonDuplicate, summary.Skipped[1].Reason)
	assert.Zero(t, f.sms.Attempts())
	f.notifications.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
}

func TestOrderReadyDispatcher_Dispatch_LostInsertRaceIsDuplicate(t *testing.T) {
	f := newDispatcherFixture()
	entry := domain.OrderReadyEntry{Name: "Alice", PhoneNumber: "+14445556666", OrderNumber: "1234", Date: "11/18/2025"}

	f.optOuts.On("IsOptedOut", mock.Anything, mock.Anything).Return(false, nil)
	f.notifications.On("FindByIdempotencyKey", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	f.notifications.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(false, nil)

	summary, err := f.dispatcher.Dispatch(context.Background(), []domain.OrderReadyEntry{entry})
	require.NoError(t, err)
	require.Len(t, summary.Skipped, 1)
	assert.Equal(t, ReasonDuplicate, summary.Skipped[0].Reason)
	assert.Zero(t, f.sms.Attempts())
}

func TestOrderReadyDispatcher_Dispatch_IsolatesFailures(t *testing.T) {
	f := newDispatcherFixture()
	good := domain.OrderReadyEntry{Name: "Alice", PhoneNumber: "+14445556666", OrderNumber: "1", Date: "d"}
	badSend := domain.OrderReadyEntry{Name: "Bob", PhoneNumber: "+14445557777", OrderNumber: "2", Date: "d"}
	badStore := domain.OrderReadyEntry{Name: "Carol", PhoneNumber: "+14445558888", OrderNumber: "3", Date: "d"}
	f.sms.FailFor(badSend.PhoneNumber)

	f.optOuts.On("IsOptedOut", mock.Anything, mock.Anything).Return(false, nil)
	f.notifications.On("FindByIdempotencyKey", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	f.notifications.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(r *domain.NotificationRecord) bool {
		return r.PhoneNumber == badStore.PhoneNumber
	})).Return(false, errors.New("connection refused"))
	f.notifications.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(true, nil)

	summary, err := f.dispatcher.Dispatch(context.Background(), []domain.OrderReadyEntry{good, badSend, badStore})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Sent)
	assert.True(t, summary.Success())
	require.Len(t, summary.Failed, 2)
	assert.Equal(t, "Bob", summary.Failed[0].Customer.Name)
	assert.Contains(t, summary.Failed[0].Error, provider.ErrSimulatedFailure.Error())
	assert.Equal(t, "Carol", summary.Failed[1].Customer.Name)
	assert.Equal(t, OutcomeSent, summary.Outcomes[0].Status)
}
