package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
	"github.com/ordernotify/golang_services/internal/notification_service/templates"
)

func TestClassify(t *testing.T) {
	const from = "+14445556666"
	testCases := []struct {
		from, body string
		want       Intent
	}{
		{"", "yes", IntentMalformed},
		{from, "   ", IntentMalformed},
		{"4445556666", "yes", IntentUnrecognized},
		{"4445556666", "STOP", IntentUnrecognized},
		{from, "STOP", IntentOptOut},
		{from, " Unsubscribe ", IntentOptOut},
		{from, "cancel", IntentOptOut},
		{from, "end", IntentOptOut},
		{from, "Quit", IntentOptOut},
		{from, "YES", IntentPickup},
		{from, "no", IntentDonate},
		{from, "start", IntentUnrecognized},
		{from, "yes please", IntentUnrecognized},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Classify(tc.from, tc.body), "from=%q body=%q", tc.from, tc.body)
	}
}

type inboundFixture struct {
	optOuts   *MockOptOutRepository
	reminders *MockReminderRepository
	publisher *recordingPublisher
	svc       *InboundReplyService
	replies   templates.Replies
}

var inboundNow = time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)

func newInboundFixture() *inboundFixture {
	f := &inboundFixture{
		optOuts:   new(MockOptOutRepository),
		reminders: new(MockReminderRepository),
		publisher: &recordingPublisher{},
		replies:   templates.Default().Replies,
	}
	f.svc = NewInboundReplyService(f.optOuts, f.reminders, f.replies, NewEventEmitter(f.publisher, discardLogger()), discardLogger())
	f.svc.now = fixedClock(inboundNow)
	return f
}

func TestInboundReplyService_OptOut(t *testing.T) {
	f := newInboundFixture()
	f.optOuts.On("Upsert", mock.Anything, &domain.OptOutRecord{PhoneNumber: "+14445556666", OptedOut: true, OptedOutAt: inboundNow}).Return(nil)

	intent, reply := f.svc.Handle(context.Background(), "+14445556666", "stop")
	assert.Equal(t, IntentOptOut, intent)
	assert.Equal(t, f.replies.OptedOut, reply)
	assert.Contains(t, reply, "unsubscribed")
	assert.Equal(t, []string{"inbound.keyword.opt_out", domain.SubjectOptOutRecorded}, f.publisher.Subjects())
	f.optOuts.AssertExpectations(t)
}

func TestInboundReplyService_Acknowledge(t *testing.T) {
	f := newInboundFixture()
	matches := []*domain.ReminderRecord{{ID: "r-1", OrderNumber: "1"}, {ID: "r-2", OrderNumber: "2"}}
	f.reminders.On("FindByPhone", mock.Anything, "+14445556666").Return(matches, nil)
	f.reminders.On("SetAcknowledgement", mock.Anything, "r-1", domain.AcknowledgementDonate, inboundNow).Return(nil)
	f.reminders.On("SetAcknowledgement", mock.Anything, "r-2", domain.AcknowledgementDonate, inboundNow).Return(nil)

	intent, reply := f.svc.Handle(context.Background(), "+14445556666", "No")
	assert.Equal(t, IntentDonate, intent)
	assert.Equal(t, f.replies.DonateConfirmed, reply)
	f.reminders.AssertExpectations(t)
}

func TestInboundReplyService_AcknowledgeWithoutReminder(t *testing.T) {
	f := newInboundFixture()
	f.reminders.On("FindByPhone", mock.Anything, "+14445556666").Return([]*domain.ReminderRecord{}, nil)

	_, reply := f.svc.Handle(context.Background(), "+14445556666", "yes")
	assert.Equal(t, f.replies.NotFound, reply)
}

func TestInboundReplyService_StoreFailureStillReplies(t *testing.T) {
	f := newInboundFixture()
	f.reminders.On("FindByPhone", mock.Anything, mock.Anything).Return(nil, errors.New("unavailable"))

	_, reply := f.svc.Handle(context.Background(), "+14445556666", "yes")
	assert.Equal(t, f.replies.InternalError, reply)
}

func TestInboundReplyService_MalformedAndUnrecognized(t *testing.T) {
	f := newInboundFixture()

	intent, reply := f.svc.Handle(context.Background(), "", "")
	assert.Equal(t, IntentMalformed, intent)
	assert.Equal(t, f.replies.Malformed, reply)
	assert.Empty(t, f.publisher.Subjects())

	intent, reply = f.svc.Handle(context.Background(), "+14445556666", "maybe")
	assert.Equal(t, IntentUnrecognized, intent)
	assert.Equal(t, f.replies.Unrecognized, reply)
	f.optOuts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestInboundReplyService_NonCanonicalSenderIsNotActedOn(t *testing.T) {
	f := newInboundFixture()

	intent, reply := f.svc.Handle(context.Background(), "4445556666", "STOP")
	assert.Equal(t, IntentUnrecognized, intent)
	assert.Equal(t, f.replies.Unrecognized, reply)
	assert.NotEqual(t, f.replies.Malformed, reply)
	f.optOuts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	f.reminders.AssertNotCalled(t, "FindByPhone", mock.Anything, mock.Anything)
}
