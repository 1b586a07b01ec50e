package domain

import (
	"context"
	"time"
)

// NotificationRepository stores order-ready notification records.
type NotificationRepository interface {
	// FindByIdempotencyKey returns ErrNotFound when no record carries key.
	FindByIdempotencyKey(ctx context.Context, key string) (*NotificationRecord, error)
	// CreateIfAbsent inserts rec unless a record with the same idempotency key exists.
	// It reports whether this call inserted the record.
	CreateIfAbsent(ctx context.Context, rec *NotificationRecord) (bool, error)
}

// ReminderRepository stores reminder records.
type ReminderRepository interface {
	Create(ctx context.Context, rec *ReminderRecord) error
	FindByOrderAndPhone(ctx context.Context, orderNumber, phoneNumber string) ([]*ReminderRecord, error)
	FindByPhone(ctx context.Context, phoneNumber string) ([]*ReminderRecord, error)
	// FindExpired returns records with expirationDate < now and status reminded.
	FindExpired(ctx context.Context, now time.Time) ([]*ReminderRecord, error)
	// Delete returns ErrNotFound if id does not exist.
	Delete(ctx context.Context, id string) error
	// MarkExpired moves a reminded record to expired. It reports false when the record
	// was already expired or no longer exists.
	MarkExpired(ctx context.Context, id string, at time.Time) (bool, error)
	SetAcknowledgement(ctx context.Context, id string, ack Acknowledgement, at time.Time) error
}

// OptOutRepository stores opt-outs keyed by phone number.
type OptOutRepository interface {
	IsOptedOut(ctx context.Context, phoneNumber string) (bool, error)
	// Upsert creates or overwrites the record for rec.PhoneNumber.
	Upsert(ctx context.Context, rec *OptOutRecord) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Notifications NotificationRepository
	Reminders     ReminderRepository
	OptOuts       OptOutRepository
	Ping          func(ctx context.Context) error
	Close         func()
}
