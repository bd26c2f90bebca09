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

// RecipientRepository manages per-user read state on recipient rows.
// read_at is monotonic: the mark-read filter only matches unread rows,
// so re-marking never moves an existing timestamp.
type RecipientRepository struct {
	collection *mongo.Collection
}

// NewRecipientRepository creates a new RecipientRepository
func NewRecipientRepository(db *mongo.Database) *RecipientRepository {
	return &RecipientRepository{
		collection: db.Collection(CollectionRecipients),
	}
}

// CountUnread recomputes the authoritative unread count for one user
func (r *RecipientRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.collection.CountDocuments(opCtx, bson.M{
		"user_id":    userID,
		"read_at":    nil,
		"deleted_at": nil,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread rows: %w", err)
	}

	return count, nil
}

// MarkRead sets read_at on one unread recipient row. Returns false when
// the row was missing or already read.
func (r *RecipientRepository) MarkRead(ctx context.Context, notificationID, userID string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return false, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.collection.UpdateOne(opCtx,
		bson.M{"notification_id": objID, "user_id": userID, "read_at": nil},
		bson.M{"$set": bson.M{"read_at": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}

	return result.ModifiedCount > 0, nil
}

// MarkAllRead sets read_at on every unread, undeleted row of one user.
// Returns the number of rows updated.
func (r *RecipientRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.collection.UpdateMany(opCtx,
		bson.M{"user_id": userID, "read_at": nil, "deleted_at": nil},
		bson.M{"$set": bson.M{"read_at": time.Now()}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}

	return result.ModifiedCount, nil
}

// SoftDelete hides one notification for one user without touching other
// recipients' rows
func (r *RecipientRepository) SoftDelete(ctx context.Context, notificationID, userID string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return false, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.collection.UpdateOne(opCtx,
		bson.M{"notification_id": objID, "user_id": userID, "deleted_at": nil},
		bson.M{"$set": bson.M{"deleted_at": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete notification: %w", err)
	}

	return result.ModifiedCount > 0, nil
}

// FindByUser returns the user's undeleted recipient rows, newest first
func (r *RecipientRepository) FindByUser(ctx context.Context, userID string, limit int64) ([]models.RecipientRecord, error) {
	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(opCtx, bson.M{"user_id": userID, "deleted_at": nil}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipient rows: %w", err)
	}
	defer cursor.Close(opCtx)

	var rows []models.RecipientRecord
	if err = cursor.All(opCtx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode recipient rows: %w", err)
	}

	return rows, nil
}

// PurgeDeletedBefore removes soft-deleted rows older than the cutoff.
// Run by the maintenance cron.
func (r *RecipientRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	opCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := r.collection.DeleteMany(opCtx, bson.M{
		"deleted_at": bson.M{"$ne": nil, "$lt": cutoff},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge deleted rows: %w", err)
	}

	return result.DeletedCount, nil
}
