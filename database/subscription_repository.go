package database

import (
	"context"
	"fmt"
	"time"

	"github.com/thecoder877/Vrticko/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SubscriptionRepository manages push subscriptions. All writes are keyed
// by endpoint, so concurrent registration and delivery-driven pruning
// converge without extra locking.
type SubscriptionRepository struct {
	collection *mongo.Collection
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{
		collection: db.Collection(CollectionSubscriptions),
	}
}

// Upsert creates or replaces a subscription keyed by endpoint. A browser
// resubscribing under the same endpoint refreshes the keys and updated_at.
func (r *SubscriptionRepository) Upsert(sub *models.PushSubscription) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"user_id":    sub.UserID,
			"p256dh_key": sub.P256dhKey,
			"auth_key":   sub.AuthKey,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"endpoint":   sub.Endpoint,
			"created_at": now,
		},
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"endpoint": sub.Endpoint},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	sub.UpdatedAt = now
	return nil
}

// FindByUserIDs returns every subscription belonging to the listed users
func (r *SubscriptionRepository) FindByUserIDs(ctx context.Context, userIDs []string) ([]models.PushSubscription, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var subscriptions []models.PushSubscription
	cursor, err := r.collection.Find(opCtx, bson.M{"user_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer cursor.Close(opCtx)

	if err = cursor.All(opCtx, &subscriptions); err != nil {
		return nil, fmt.Errorf("failed to decode subscriptions: %w", err)
	}

	return subscriptions, nil
}

// FindByEndpoint looks up a subscription by endpoint. Returns nil without
// error when missing.
func (r *SubscriptionRepository) FindByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error) {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var subscription models.PushSubscription
	err := r.collection.FindOne(opCtx, bson.M{"endpoint": endpoint}).Decode(&subscription)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}

	return &subscription, nil
}

// Delete removes a subscription by endpoint. Used for explicit opt-out
// and for pruning endpoints the transport reports as gone.
func (r *SubscriptionRepository) Delete(ctx context.Context, endpoint string) error {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteOne(opCtx, bson.M{"endpoint": endpoint})
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	return nil
}

// DeleteByUserID removes every subscription of one user
func (r *SubscriptionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteMany(opCtx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete subscriptions: %w", err)
	}

	return nil
}
