package mongo

import (
	"time"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
)

// Collection names match the document layout the business already uses.
const (
	CollectionOrders    = "orders"
	CollectionReminders = "reminders"
	CollectionOptOuts   = "optOuts"
)

type notificationDocument struct {
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	PhoneNumber    string    `bson:"phoneNumber"`
	OrderNumber    string    `bson:"orderNumber"`
	Date           string    `bson:"date"`
	IdempotencyKey string    `bson:"idempotencyKey"`
	Status         string    `bson:"status"`
	Route          string    `bson:"route"`
	ExpectingReply bool      `bson:"expectingReply"`
	SentAt         time.Time `bson:"sentAt"`
}

type reminderDocument struct {
	ID                string    `bson:"_id"`
	Name              string    `bson:"name"`
	PhoneNumber       string    `bson:"phoneNumber"`
	OrderNumber       string    `bson:"orderNumber"`
	InitialPickupDate string    `bson:"initialPickupDate"`
	ReminderSentDate  time.Time `bson:"reminderSentDate"`
	ExpirationDate    time.Time `bson:"expirationDate"`
	Status            string    `bson:"status"`
	Acknowledgement   string    `bson:"acknowledgement"`
	SentFromRoute     string    `bson:"sentFromRoute"`
	ExpectingReply    bool      `bson:"expectingReply"`
	LastUpdated       time.Time `bson:"lastUpdated"`
}

// optOutDocument uses the phone number as _id so there is one document per number.
type optOutDocument struct {
	PhoneNumber string    `bson:"_id"`
	OptedOut    bool      `bson:"optedOut"`
	OptedOutAt  time.Time `bson:"optedOutAt"`
}

func toNotificationDocument(r *domain.NotificationRecord) notificationDocument {
	return notificationDocument{
		ID: r.ID, Name: r.Name, PhoneNumber: r.PhoneNumber, OrderNumber: r.OrderNumber, Date: r.Date,
		IdempotencyKey: r.IdempotencyKey, Status: string(r.Status), Route: r.Route,
		ExpectingReply: r.ExpectingReply, SentAt: r.SentAt.UTC(),
	}
}

func (d notificationDocument) toDomain() *domain.NotificationRecord {
	return &domain.NotificationRecord{
		ID: d.ID, Name: d.Name, PhoneNumber: d.PhoneNumber, OrderNumber: d.OrderNumber, Date: d.Date,
		IdempotencyKey: d.IdempotencyKey, Status: domain.NotificationStatus(d.Status), Route: d.Route,
		ExpectingReply: d.ExpectingReply, SentAt: d.SentAt.UTC(),
	}
}

func toReminderDocument(r *domain.ReminderRecord) reminderDocument {
	return reminderDocument{
		ID: r.ID, Name: r.Name, PhoneNumber: r.PhoneNumber, OrderNumber: r.OrderNumber,
		InitialPickupDate: r.InitialPickupDate, ReminderSentDate: r.ReminderSentDate.UTC(),
		ExpirationDate: r.ExpirationDate.UTC(), Status: string(r.Status), Acknowledgement: string(r.Acknowledgement),
		SentFromRoute: r.SentFromRoute, ExpectingReply: r.ExpectingReply, LastUpdated: r.LastUpdated.UTC(),
	}
}

func (d reminderDocument) toDomain() *domain.ReminderRecord {
	return &domain.ReminderRecord{
		ID: d.ID, Name: d.Name, PhoneNumber: d.PhoneNumber, OrderNumber: d.OrderNumber,
		InitialPickupDate: d.InitialPickupDate, ReminderSentDate: d.ReminderSentDate.UTC(),
		ExpirationDate: d.ExpirationDate.UTC(), Status: domain.ReminderStatus(d.Status),
		Acknowledgement: domain.Acknowledgement(d.Acknowledgement), SentFromRoute: d.SentFromRoute,
		ExpectingReply: d.ExpectingReply, LastUpdated: d.LastUpdated.UTC(),
	}
}
