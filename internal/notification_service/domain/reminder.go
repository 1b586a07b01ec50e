package domain

import "time"

type ReminderStatus string

const (
	ReminderStatusReminded ReminderStatus = "reminded"
	ReminderStatusExpired  ReminderStatus = "expired"
)

type Acknowledgement string

const (
	AcknowledgementPending Acknowledgement = "PENDING"
	AcknowledgementPickup  Acknowledgement = "PICKUP"
	AcknowledgementDonate  Acknowledgement = "DONATE"
)

// DefaultReminderExpiry is how long a customer has to act on a reminder.
const DefaultReminderExpiry = 30 * 24 * time.Hour

// ReminderEntry is one customer in a POST /reminders batch.
type ReminderEntry struct {
	Name              string `json:"name" validate:"required"`
	PhoneNumber       string `json:"phoneNumber" validate:"required,nanp_phone"`
	OrderNumber       string `json:"orderNumber" validate:"required"`
	InitialPickupDate string `json:"initialPickupDate" validate:"required"`
}

// ReminderRecord tracks an unclaimed order. Status only moves reminded -> expired.
type ReminderRecord struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	PhoneNumber       string          `json:"phoneNumber"`
	OrderNumber       string          `json:"orderNumber"`
	InitialPickupDate string          `json:"initialPickupDate"`
	ReminderSentDate  time.Time       `json:"reminderSentDate"`
	ExpirationDate    time.Time       `json:"expirationDate"`
	Status            ReminderStatus  `json:"status"`
	Acknowledgement   Acknowledgement `json:"acknowledgement"`
	SentFromRoute     string          `json:"sentFromRoute"`
	ExpectingReply    bool            `json:"expectingReply"`
	LastUpdated       time.Time       `json:"lastUpdated"`
}

// NewReminderRecord builds a fresh reminded/PENDING record expiring after expiry.
func NewReminderRecord(id string, entry ReminderEntry, now time.Time, expiry time.Duration) *ReminderRecord {
	if expiry <= 0 {
		expiry = DefaultReminderExpiry
	}
	return &ReminderRecord{
		ID:                id,
		Name:              entry.Name,
		PhoneNumber:       entry.PhoneNumber,
		OrderNumber:       entry.OrderNumber,
		InitialPickupDate: entry.InitialPickupDate,
		ReminderSentDate:  now,
		ExpirationDate:    now.Add(expiry),
		Status:            ReminderStatusReminded,
		Acknowledgement:   AcknowledgementPending,
		SentFromRoute:     "/reminders",
		ExpectingReply:    true,
		LastUpdated:       now,
	}
}

// IsExpiredAt reports whether the sweep should expire the record at now.
func (r *ReminderRecord) IsExpiredAt(now time.Time) bool {
	return r.Status == ReminderStatusReminded && r.ExpirationDate.Before(now)
}
