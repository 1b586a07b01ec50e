package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsCanonicalPhoneNumber(t *testing.T) {
	valid := []string{"+14445556666", "+16175236860"}
	invalid := []string{"", "5551234567", "+1555123456", "+155512345678", "+44 20 7946 0958", "+1555-123-4567", "14445556666"}

	for _, p := range valid {
		assert.True(t, IsCanonicalPhoneNumber(p), p)
	}
	for _, p := range invalid {
		assert.False(t, IsCanonicalPhoneNumber(p), p)
	}
}

func TestIdempotencyKey(t *testing.T) {
	a := IdempotencyKey("+14445556666", "1234", "11/18/2025")
	assert.Equal(t, "f79451a43c7b3b18fecb1adea5ef45f33784ea4b2e75dbb2073192abf93cc508", a)
	assert.Equal(t, a, IdempotencyKey("+14445556666", "1234", "11/18/2025"))
	assert.NotEqual(t, a, IdempotencyKey("+14445556666", "1235", "11/18/2025"))
	assert.NotEqual(t, a, IdempotencyKey("+14445556666", "1234", "11/19/2025"))
}

func TestFormatPhoneNumber(t *testing.T) {
	assert.Equal(t, "(617) 523-6860", FormatPhoneNumber("+16175236860"))
	assert.Equal(t, "12345", FormatPhoneNumber("12345"))
}

func TestNewReminderRecord(t *testing.T) {
	now := time.Date(2025, 11, 18, 15, 0, 0, 0, time.UTC)
	rec := NewReminderRecord("r-1", ReminderEntry{
		Name: "Alice", PhoneNumber: "+14445556666", OrderNumber: "1234", InitialPickupDate: "10/01/2025",
	}, now, 0)

	assert.Equal(t, ReminderStatusReminded, rec.Status)
	assert.Equal(t, AcknowledgementPending, rec.Acknowledgement)
	assert.Equal(t, now, rec.ReminderSentDate)
	assert.Equal(t, now.Add(30*24*time.Hour), rec.ExpirationDate)
	assert.Equal(t, "/reminders", rec.SentFromRoute)
	assert.True(t, rec.ExpectingReply)

	assert.False(t, rec.IsExpiredAt(now))
	assert.True(t, rec.IsExpiredAt(now.Add(31*24*time.Hour)))
	rec.Status = ReminderStatusExpired
	assert.False(t, rec.IsExpiredAt(now.Add(31*24*time.Hour)))
}

func TestDownstreamError(t *testing.T) {
	cause := errors.New("connection reset")
	err := Downstream("create reminder", cause)

	var de *DownstreamError
	assert.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "create reminder: connection reset", err.Error())
	assert.Nil(t, Downstream("noop", nil))
}
