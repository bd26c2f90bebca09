package database

import (
	"context"
	"fmt"
	"time"

	"github.com/thecoder877/Vrticko/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository manages notifications and their fan-out into
// per-recipient rows. Creation is a single multi-document transaction:
// either the notification and every recipient row commit together or
// nothing is visible.
type NotificationRepository struct {
	db            *mongo.Database
	notifications *mongo.Collection
	recipients    *mongo.Collection
}

// fanOutResult carries the transaction outcome out of WithTransaction
type fanOutResult struct {
	notification *models.Notification
	recipients   []models.RecipientRecord
	created      bool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		db:            db,
		notifications: db.Collection(CollectionNotifications),
		recipients:    db.Collection(CollectionRecipients),
	}
}

// CreateWithRecipients inserts the notification plus one recipient row per
// resolved user inside one transaction. The dedup read runs inside the same
// transaction as the insert it gates, so it sees the same snapshot.
//
// Dedup is checked two ways: an explicit idempotency key under the sparse
// unique index, or, when no key was supplied, the most recent notification
// with identical title and message inside the dedup window. A hit returns
// the existing notification and its rows with created=false.
func (r *NotificationRepository) CreateWithRecipients(ctx context.Context, notification *models.Notification, userIDs []string, window time.Duration) (*models.Notification, []models.RecipientRecord, bool, error) {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if existing, err := r.findDuplicate(sessCtx, notification, window); err != nil {
			return nil, err
		} else if existing != nil {
			rows, err := r.findRecipients(sessCtx, existing.ID)
			if err != nil {
				return nil, err
			}
			return &fanOutResult{notification: existing, recipients: rows, created: false}, nil
		}

		notification.ID = primitive.NewObjectID()
		notification.CreatedAt = time.Now()

		if _, err := r.notifications.InsertOne(sessCtx, notification); err != nil {
			// Lost a race on the idempotency key: another transaction
			// committed the same notification first. Merge into it.
			if notification.DedupKey != "" && mongo.IsDuplicateKeyError(err) {
				return nil, errDedupRace
			}
			return nil, fmt.Errorf("failed to insert notification: %w", err)
		}

		rows := make([]models.RecipientRecord, 0, len(userIDs))
		docs := make([]interface{}, 0, len(userIDs))
		now := time.Now()
		for _, userID := range userIDs {
			row := models.RecipientRecord{
				ID:             primitive.NewObjectID(),
				NotificationID: notification.ID,
				UserID:         userID,
				CreatedAt:      now,
			}
			rows = append(rows, row)
			docs = append(docs, row)
		}

		if len(docs) > 0 {
			if _, err := r.recipients.InsertMany(sessCtx, docs); err != nil {
				return nil, fmt.Errorf("failed to insert recipient rows: %w", err)
			}
		}

		return &fanOutResult{notification: notification, recipients: rows, created: true}, nil
	})

	if err == errDedupRace {
		// The competing writer won; return what it committed.
		existing, findErr := r.FindByDedupKey(ctx, notification.DedupKey)
		if findErr != nil || existing == nil {
			return nil, nil, false, fmt.Errorf("failed to resolve idempotency-key collision: %v", findErr)
		}
		rows, findErr := r.findRecipients(ctx, existing.ID)
		if findErr != nil {
			return nil, nil, false, findErr
		}
		return existing, rows, false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}

	res := result.(*fanOutResult)
	return res.notification, res.recipients, res.created, nil
}

var errDedupRace = fmt.Errorf("idempotency key already committed")

// findDuplicate applies the dedup policy inside the fan-out transaction
func (r *NotificationRepository) findDuplicate(ctx context.Context, notification *models.Notification, window time.Duration) (*models.Notification, error) {
	if notification.DedupKey != "" {
		return r.FindByDedupKey(ctx, notification.DedupKey)
	}

	var latest models.Notification
	err := r.notifications.FindOne(ctx,
		bson.M{"title": notification.Title, "message": notification.Message},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&latest)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate notification: %w", err)
	}

	if time.Since(latest.CreatedAt) < window {
		return &latest, nil
	}
	return nil, nil
}

// FindByDedupKey looks up a notification by idempotency key. Returns nil
// without error when missing.
func (r *NotificationRepository) FindByDedupKey(ctx context.Context, key string) (*models.Notification, error) {
	var notification models.Notification
	err := r.notifications.FindOne(ctx, bson.M{"dedup_key": key}).Decode(&notification)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find notification by dedup key: %w", err)
	}

	return &notification, nil
}

// FindByID looks up a notification by ID hex. Returns nil without error
// when missing or malformed.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var notification models.Notification
	err = r.notifications.FindOne(opCtx, bson.M{"_id": objID}).Decode(&notification)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}

	return &notification, nil
}

// FindByIDs returns the listed notifications keyed by ID hex
func (r *NotificationRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[string]models.Notification, error) {
	if len(ids) == 0 {
		return map[string]models.Notification{}, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.notifications.Find(opCtx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer cursor.Close(opCtx)

	var rows []models.Notification
	if err = cursor.All(opCtx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}

	byID := make(map[string]models.Notification, len(rows))
	for _, row := range rows {
		byID[row.ID.Hex()] = row
	}

	return byID, nil
}

// findRecipients loads every recipient row of one notification
func (r *NotificationRepository) findRecipients(ctx context.Context, notificationID primitive.ObjectID) ([]models.RecipientRecord, error) {
	cursor, err := r.recipients.Find(ctx, bson.M{"notification_id": notificationID})
	if err != nil {
		return nil, fmt.Errorf("failed to query recipient rows: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []models.RecipientRecord
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode recipient rows: %w", err)
	}

	return rows, nil
}
