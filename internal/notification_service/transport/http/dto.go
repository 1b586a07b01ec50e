package http

import (
	"github.com/ordernotify/golang_services/internal/notification_service/app"
	"github.com/ordernotify/golang_services/internal/notification_service/domain"
)

// OrderReadyRequest is the body of POST /sms. A missing "customers" key decodes to a nil slice.
type OrderReadyRequest struct {
	Customers []domain.OrderReadyEntry `json:"customers"`
}

type ReminderRequest struct {
	Customers []domain.ReminderEntry `json:"customers"`
}

// DeleteReminderRequest is the body of DELETE /reminders/{orderNumber}.
type DeleteReminderRequest struct {
	Customer struct {
		PhoneNumber string `json:"phoneNumber"`
	} `json:"customer"`
}

type MessageLogsRequest struct {
	DateRange []string `json:"dateRange"`
}

type ReceiptRequest struct {
	OrderForm map[string]any `json:"orderForm"`
}

// InboundMessageRequest is the JSON form of the inbound webhook body.
type InboundMessageRequest struct {
	From string `json:"From"`
	Body string `json:"Body"`
}

type OrderReadySummary struct {
	TotalMessagesSent      int                     `json:"totalMessagesSent"`
	TotalMessagesSkipped   int                     `json:"totalMessagesSkipped"`
	SkippedMessagesDetails []app.OrderReadyOutcome `json:"skippedMessagesDetails"`
	TotalMessagesFailed    int                     `json:"totalMessagesFailed"`
	FailedMessagesDetails  []app.OrderReadyOutcome `json:"failedMessagesDetails"`
}

type OrderReadyResponse struct {
	Message OrderReadySummary `json:"message"`
	Success bool              `json:"success"`
}

type ReminderResponse struct {
	Message               string                `json:"message"`
	TotalMessagesSent     int                   `json:"totalMessagesSent"`
	TotalMessagesFailed   int                   `json:"totalMessagesFailed"`
	FailedMessagesDetails []app.ReminderOutcome `json:"failedMessagesDetails"`
	Success               bool                  `json:"success"`
}

type DeleteReminderResponse struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deletedCount"`
	Success      bool   `json:"success"`
}

type ReceiptResponse struct {
	Message string `json:"message"`
	SID     string `json:"sid"`
	Success bool   `json:"success"`
}

type SweepResponse struct {
	Message       string                   `json:"message"`
	ExpiredOrders []*domain.ReminderRecord `json:"expiredOrders,omitempty"`
}

// MessageResponse is the generic {message, success} body used for errors.
type MessageResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
