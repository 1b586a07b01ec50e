package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
)

func byIdempotencyKey(key string) bson.D {
	return bson.D{{Key: "idempotencyKey", Value: key}}
}

func byOrderAndPhone(orderNumber, phoneNumber string) bson.D {
	return bson.D{{Key: "orderNumber", Value: orderNumber}, {Key: "phoneNumber", Value: phoneNumber}}
}

func byPhone(phoneNumber string) bson.D {
	return bson.D{{Key: "phoneNumber", Value: phoneNumber}}
}

func expiredAt(now time.Time) bson.D {
	return bson.D{
		{Key: "expirationDate", Value: bson.D{{Key: "$lt", Value: now.UTC()}}},
		{Key: "status", Value: string(domain.ReminderStatusReminded)},
	}
}

// stillReminded guards the reminded -> expired transition.
func stillReminded(id string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "status", Value: string(domain.ReminderStatusReminded)}}
}

func expireUpdate(at time.Time) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: string(domain.ReminderStatusExpired)},
		{Key: "lastUpdated", Value: at.UTC()},
	}}}
}

func acknowledgementUpdate(ack domain.Acknowledgement, at time.Time) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "acknowledgement", Value: string(ack)},
		{Key: "lastUpdated", Value: at.UTC()},
	}}}
}

func optOutUpdate(rec *domain.OptOutRecord) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "optedOut", Value: rec.OptedOut},
		{Key: "optedOutAt", Value: rec.OptedOutAt.UTC()},
	}}}
}
