package provider

import (
	"context"
	"time"
)

// SendRequestDetails is one outbound SMS.
type SendRequestDetails struct {
	InternalMessageID string
	Recipient         string
	Content           string
}

// SendResponseDetails is what the transport returned for a send.
type SendResponseDetails struct {
	ProviderMessageID string
	IsSuccess         bool
	ProviderStatus    string
	ErrorMessage      string
}

// MessageLog is one message as reported by the transport's message history.
type MessageLog struct {
	SID          string `json:"sid"`
	From         string `json:"from"`
	To           string `json:"to"`
	Body         string `json:"body"`
	Status       string `json:"status"`
	Direction    string `json:"direction"`
	DateSent     string `json:"dateSent"`
	ErrorCode    *int   `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// SMSSenderProvider sends SMS and lists past messages.
type SMSSenderProvider interface {
	Send(ctx context.Context, details SendRequestDetails) (*SendResponseDetails, error)
	// List returns messages sent on or after `after` and on or before `before` (day granularity).
	List(ctx context.Context, after, before time.Time) ([]MessageLog, error)
	GetName() string
}
