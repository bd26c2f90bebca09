//go:build integration

package database

// Run against a local MongoDB:
//   MONGO_URI=mongodb://localhost:27017 go test -tags integration ./database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/thecoder877/Vrticko/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func connectTestDB(t *testing.T) {
	t.Helper()

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	if err := Connect(uri, "vrticko_test"); err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	t.Cleanup(func() { Close() })
}

func TestMarkReadMonotonic(t *testing.T) {
	connectTestDB(t)

	repo := NewRecipientRepository(DB)
	ctx := context.Background()

	notificationID := primitive.NewObjectID()
	userID := primitive.NewObjectID().Hex()

	_, err := DB.Collection(CollectionRecipients).InsertOne(ctx, models.RecipientRecord{
		ID:             primitive.NewObjectID(),
		NotificationID: notificationID,
		UserID:         userID,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to seed recipient row: %v", err)
	}
	t.Cleanup(func() {
		DB.Collection(CollectionRecipients).DeleteMany(ctx, bson.M{"user_id": userID})
	})

	modified, err := repo.MarkRead(ctx, notificationID.Hex(), userID)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !modified {
		t.Fatal("first MarkRead must modify the row")
	}

	rows, err := repo.FindByUser(ctx, userID, 0)
	if err != nil {
		t.Fatalf("FindByUser: %v", err)
	}
	if len(rows) != 1 || rows[0].ReadAt == nil {
		t.Fatalf("expected one read row, got %+v", rows)
	}
	firstReadAt := *rows[0].ReadAt

	// Re-marking is a no-op that still succeeds; the timestamp never moves
	modified, err = repo.MarkRead(ctx, notificationID.Hex(), userID)
	if err != nil {
		t.Fatalf("second MarkRead: %v", err)
	}
	if modified {
		t.Error("second MarkRead must not modify the row")
	}

	rows, err = repo.FindByUser(ctx, userID, 0)
	if err != nil {
		t.Fatalf("FindByUser: %v", err)
	}
	if rows[0].ReadAt == nil || !rows[0].ReadAt.Equal(firstReadAt) {
		t.Errorf("read_at moved from %v to %v", firstReadAt, rows[0].ReadAt)
	}

	count, err := repo.CountUnread(ctx, userID)
	if err != nil {
		t.Fatalf("CountUnread: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 unread, got %d", count)
	}
}
