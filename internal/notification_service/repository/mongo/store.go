// Package mongo stores notification state as documents in MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
)

// Connect dials MongoDB, pings it and ensures the indexes the repositories rely on.
func Connect(ctx context.Context, uri, database string, logger *slog.Logger) (*domain.Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	if err := EnsureIndexes(connectCtx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &domain.Store{
		Notifications: NewNotificationRepository(db, logger),
		Reminders:     NewReminderRepository(db, logger),
		OptOuts:       NewOptOutRepository(db, logger),
		Ping:          func(ctx context.Context) error { return client.Ping(ctx, nil) },
		Close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		},
	}, nil
}

// EnsureIndexes creates the unique idempotency-key index and the reminder lookup indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionOrders).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "idempotencyKey", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idempotencyKey_unique"),
	})
	if err != nil {
		return fmt.Errorf("creating idempotency key index: %w", err)
	}
	_, err = db.Collection(CollectionReminders).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "orderNumber", Value: 1}, {Key: "phoneNumber", Value: 1}}},
		{Keys: bson.D{{Key: "phoneNumber", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expirationDate", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating reminder indexes: %w", err)
	}
	return nil
}

type NotificationRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

func NewNotificationRepository(db *mongo.Database, logger *slog.Logger) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection(CollectionOrders),
		logger:     logger.With("component", "notification_repository_mongo"),
	}
}

func (r *NotificationRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.NotificationRecord, error) {
	var doc notificationDocument
	err := r.collection.FindOne(ctx, byIdempotencyKey(key)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding notification by idempotency key: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *NotificationRepository) CreateIfAbsent(ctx context.Context, rec *domain.NotificationRecord) (bool, error) {
	_, err := r.collection.InsertOne(ctx, toNotificationDocument(rec))
	if mongo.IsDuplicateKeyError(err) {
		r.logger.InfoContext(ctx, "Notification with same idempotency key already stored", "order_number", rec.OrderNumber)
		return false, nil
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Error inserting notification", "error", err)
		return false, fmt.Errorf("inserting notification: %w", err)
	}
	return true, nil
}

type ReminderRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

func NewReminderRepository(db *mongo.Database, logger *slog.Logger) *ReminderRepository {
	return &ReminderRepository{
		collection: db.Collection(CollectionReminders),
		logger:     logger.With("component", "reminder_repository_mongo"),
	}
}

func (r *ReminderRepository) Create(ctx context.Context, rec *domain.ReminderRecord) error {
	if _, err := r.collection.InsertOne(ctx, toReminderDocument(rec)); err != nil {
		r.logger.ErrorContext(ctx, "Error inserting reminder", "error", err, "reminder_id", rec.ID)
		return fmt.Errorf("inserting reminder: %w", err)
	}
	return nil
}

func (r *ReminderRepository) FindByOrderAndPhone(ctx context.Context, orderNumber, phoneNumber string) ([]*domain.ReminderRecord, error) {
	return r.find(ctx, "finding reminders by order and phone", byOrderAndPhone(orderNumber, phoneNumber))
}

func (r *ReminderRepository) FindByPhone(ctx context.Context, phoneNumber string) ([]*domain.ReminderRecord, error) {
	return r.find(ctx, "finding reminders by phone", byPhone(phoneNumber))
}

func (r *ReminderRepository) FindExpired(ctx context.Context, now time.Time) ([]*domain.ReminderRecord, error) {
	return r.find(ctx, "finding expired reminders", expiredAt(now))
}

func (r *ReminderRepository) find(ctx context.Context, op string, filter bson.D) ([]*domain.ReminderRecord, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var docs []reminderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decoding: %w", op, err)
	}
	out := make([]*domain.ReminderRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ReminderRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("deleting reminder: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReminderRepository) MarkExpired(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.collection.UpdateOne(ctx, stillReminded(id), expireUpdate(at))
	if err != nil {
		return false, fmt.Errorf("expiring reminder: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *ReminderRepository) SetAcknowledgement(ctx context.Context, id string, ack domain.Acknowledgement, at time.Time) error {
	res, err := r.collection.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, acknowledgementUpdate(ack, at))
	if err != nil {
		return fmt.Errorf("updating acknowledgement: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type OptOutRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

func NewOptOutRepository(db *mongo.Database, logger *slog.Logger) *OptOutRepository {
	return &OptOutRepository{
		collection: db.Collection(CollectionOptOuts),
		logger:     logger.With("component", "optout_repository_mongo"),
	}
}

func (r *OptOutRepository) IsOptedOut(ctx context.Context, phoneNumber string) (bool, error) {
	var doc optOutDocument
	err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: phoneNumber}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking opt-out: %w", err)
	}
	return doc.OptedOut, nil
}

func (r *OptOutRepository) Upsert(ctx context.Context, rec *domain.OptOutRecord) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: rec.PhoneNumber}},
		optOutUpdate(rec),
		options.Update().SetUpsert(true),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error upserting opt-out", "error", err)
		return fmt.Errorf("upserting opt-out: %w", err)
	}
	return nil
}
