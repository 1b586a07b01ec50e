package domain

import "time"

// Event subjects published on the configured event bus.
const (
	SubjectNotificationSent     = "notification.sent"
	SubjectReminderCreated      = "reminder.created"
	SubjectOptOutRecorded       = "optout.recorded"
	SubjectReminderAcknowledged = "reminder.acknowledged"
	SubjectRemindersExpired     = "reminders.expired"
	SubjectInboundKeywordPrefix = "inbound.keyword."
)

// Event is the JSON envelope for every published domain event.
type Event struct {
	ID          string         `json:"id"`
	Subject     string         `json:"subject"`
	OccurredAt  time.Time      `json:"occurredAt"`
	PhoneNumber string         `json:"phoneNumber,omitempty"`
	OrderNumber string         `json:"orderNumber,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}
