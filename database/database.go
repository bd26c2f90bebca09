package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	CollectionUsers         = "users"
	CollectionSubscriptions = "push_subscriptions"
	CollectionNotifications = "notifications"
	CollectionRecipients    = "user_notifications"
)

// DB is the MongoDB database handle
var DB *mongo.Database
var Client *mongo.Client

// Connect establishes the MongoDB connection
func Connect(uri, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	Client = client
	DB = client.Database(dbName)

	log.Println("✓ MongoDB connection established")

	if err = createIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// Ping checks that the MongoDB connection is alive
func Ping() error {
	if Client == nil {
		return fmt.Errorf("MongoDB client not initialized")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return Client.Ping(ctx, nil)
}

// Close closes the database connection
func Close() error {
	if Client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return Client.Disconnect(ctx)
	}
	return nil
}

// createIndexes creates the indexes the pipeline relies on
func createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Unique email per user
	_, err := DB.Collection(CollectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}

	// Endpoint uniqueness is global: one row per browser registration
	_, err = DB.Collection(CollectionSubscriptions).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "endpoint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription indexes: %w", err)
	}

	// Sparse unique dedup key plus the content+time window lookup
	_, err = DB.Collection(CollectionNotifications).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dedup_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "title", Value: 1}, {Key: "message", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}

	// One recipient row per (notification, user); unread counts scan by user
	_, err = DB.Collection(CollectionRecipients).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "notification_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read_at", Value: 1}, {Key: "deleted_at", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create recipient indexes: %w", err)
	}

	log.Println("✓ MongoDB indexes created")
	return nil
}
