package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/thecoder877/Vrticko/metrics"
	"github.com/thecoder877/Vrticko/models"
	"github.com/thecoder877/Vrticko/utils"
)

// NotificationStore is the slice of the notification repository the
// service needs. Implemented by database.NotificationRepository.
type NotificationStore interface {
	CreateWithRecipients(ctx context.Context, notification *models.Notification, userIDs []string, window time.Duration) (*models.Notification, []models.RecipientRecord, bool, error)
}

// FeedBroadcaster pushes change signals to connected clients. Implemented
// by websocket.Hub.
type FeedBroadcaster interface {
	BroadcastRecipientEvent(event models.FeedEvent)
}

// PushDispatcher is the delivery worker interface. Implemented by
// PushService.
type PushDispatcher interface {
	Dispatch(ctx context.Context, notification *models.Notification, recipientIDs []string) models.DeliveryStats
}

// NotificationService runs the creation pipeline: validate, resolve the
// audience, dedup-checked atomic fan-out, then best-effort push dispatch
// and feed broadcast. Fan-out failure aborts the whole call; delivery
// failure never does.
type NotificationService struct {
	store       NotificationStore
	resolver    *AudienceResolver
	push        PushDispatcher
	feed        FeedBroadcaster
	dedupWindow time.Duration
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(store NotificationStore, resolver *AudienceResolver, push PushDispatcher, feed FeedBroadcaster, dedupWindow time.Duration) *NotificationService {
	return &NotificationService{
		store:       store,
		resolver:    resolver,
		push:        push,
		feed:        feed,
		dedupWindow: dedupWindow,
	}
}

// Create runs one notification through the full pipeline and returns the
// committed notification with aggregate delivery stats.
func (s *NotificationService) Create(ctx context.Context, req models.CreateNotificationRequest, createdBy string) (*models.CreateNotificationResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.Target == models.TargetIndividual && req.IndividualUserID == "" {
		return nil, &utils.ValidationError{Field: "IndividualUserID", Message: "required for individual target"}
	}

	// Snapshot the audience before the transaction; it is never re-queried
	recipients, err := s.resolver.Resolve(ctx, req.Target, req.IndividualUserID)
	if err != nil {
		return nil, err
	}

	notification := &models.Notification{
		Title:            req.Title,
		Message:          req.Message,
		Target:           req.Target,
		IndividualUserID: req.IndividualUserID,
		DedupKey:         req.IdempotencyKey,
		CreatedBy:        createdBy,
	}

	committed, rows, created, err := s.store.CreateWithRecipients(ctx, notification, recipients, s.dedupWindow)
	if err != nil {
		return nil, fmt.Errorf("fan-out failed: %w", err)
	}

	if !created {
		// Merged into an existing notification: no new rows, no re-dispatch
		metrics.DedupMerged.Inc()
		log.Printf("⚠️  Duplicate notification %q merged into %s", committed.Title, committed.ID.Hex())
		return &models.CreateNotificationResponse{
			Notification: committed,
			Deduplicated: true,
			Recipients:   len(rows),
		}, nil
	}

	metrics.NotificationsCreated.Inc()
	metrics.RecipientsFannedOut.Add(float64(len(rows)))
	log.Printf("✓ Notification %s fanned out to %d recipients", committed.ID.Hex(), len(rows))

	// The fan-out is durable; connected clients learn about their new rows
	// through the feed regardless of push outcome
	if s.feed != nil {
		for _, row := range rows {
			s.feed.BroadcastRecipientEvent(models.NewRecipientEvent(models.FeedOpInsert, row.UserID, committed.ID.Hex()))
		}
	}

	// Admins are never enrolled in push; they ride the feed only
	pushRecipients, err := s.resolver.ExcludeRole(ctx, recipients, models.RoleAdmin)
	if err != nil {
		log.Printf("⚠️  Failed to filter push recipients, skipping dispatch: %v", err)
		pushRecipients = nil
	}

	stats := models.DeliveryStats{}
	if len(pushRecipients) > 0 {
		stats = s.push.Dispatch(ctx, committed, pushRecipients)
	}

	return &models.CreateNotificationResponse{
		Notification: committed,
		Recipients:   len(rows),
		Delivery:     stats,
	}, nil
}
