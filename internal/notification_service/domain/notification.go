package domain

import "time"

type NotificationStatus string

const (
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusSkipped NotificationStatus = "skipped"
)

// OrderReadyEntry is one customer in a POST /sms batch.
type OrderReadyEntry struct {
	Name        string `json:"name" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required,nanp_phone"`
	OrderNumber string `json:"orderNumber" validate:"required"`
	Date        string `json:"date" validate:"required"`
}

// NotificationRecord is written once per order-ready send that passed the filter. Never updated.
type NotificationRecord struct {
	ID             string
	Name           string
	PhoneNumber    string
	OrderNumber    string
	Date           string
	IdempotencyKey string
	Status         NotificationStatus
	Route          string
	ExpectingReply bool
	SentAt         time.Time
}
