package services

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/thecoder877/Vrticko/metrics"
	"github.com/thecoder877/Vrticko/models"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// Default payload decoration handed to the service worker
const (
	defaultIcon  = "/icon-192x192.png"
	defaultBadge = "/badge-72x72.png"
	defaultURL   = "/notifications"
)

// SubscriptionStore is the slice of the subscription registry the worker
// needs. Implemented by database.SubscriptionRepository.
type SubscriptionStore interface {
	FindByUserIDs(ctx context.Context, userIDs []string) ([]models.PushSubscription, error)
	Delete(ctx context.Context, endpoint string) error
}

// PushService dispatches signed payloads to every subscription endpoint of
// every recipient. Delivery is best-effort and at-most-once: failures are
// counted, never retried, and never escalate to the create-notification
// caller. Endpoints the transport reports gone (404/410) are pruned from
// the registry.
type PushService struct {
	subscriptions   SubscriptionStore
	vapidPublicKey  string
	vapidPrivateKey string
	vapidSubject    string
	dispatchTimeout time.Duration
	maxConcurrent   int
}

// NewPushService creates a new PushService
func NewPushService(subscriptions SubscriptionStore, vapidPublicKey, vapidPrivateKey, vapidSubject string, dispatchTimeout time.Duration, maxConcurrent int) *PushService {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &PushService{
		subscriptions:   subscriptions,
		vapidPublicKey:  vapidPublicKey,
		vapidPrivateKey: vapidPrivateKey,
		vapidSubject:    vapidSubject,
		dispatchTimeout: dispatchTimeout,
		maxConcurrent:   maxConcurrent,
	}
}

// Dispatch sends the notification to every subscription of the given
// recipients. Sends run concurrently under a bounded worker pool with an
// overall timeout; sends cut off by the deadline count as failed.
func (s *PushService) Dispatch(ctx context.Context, notification *models.Notification, recipientIDs []string) models.DeliveryStats {
	subs, err := s.subscriptions.FindByUserIDs(ctx, recipientIDs)
	if err != nil {
		log.Printf("❌ Failed to load subscriptions for dispatch: %v", err)
		return models.DeliveryStats{}
	}

	if len(subs) == 0 {
		return models.DeliveryStats{}
	}

	payload, err := json.Marshal(models.PushPayload{
		Title:          notification.Title,
		Body:           notification.Message,
		Icon:           defaultIcon,
		Badge:          defaultBadge,
		NotificationID: notification.ID.Hex(),
		URL:            defaultURL,
	})
	if err != nil {
		log.Printf("❌ Failed to marshal push payload: %v", err)
		return models.DeliveryStats{}
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.maxConcurrent)
	outcomes := make(chan models.DeliveryOutcome, len(subs))

	for _, sub := range subs {
		wg.Add(1)
		go func(sub models.PushSubscription) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-dispatchCtx.Done():
				// Never got a worker slot before the dispatch deadline
				outcomes <- models.DeliveryOutcome{Endpoint: sub.Endpoint, UserID: sub.UserID, Success: false}
				return
			}

			outcomes <- s.sendOne(dispatchCtx, payload, sub)
		}(sub)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	stats := models.DeliveryStats{}
	for outcome := range outcomes {
		stats.Attempted++
		metrics.PushAttempted.Inc()
		if outcome.Success {
			stats.Succeeded++
			metrics.PushSucceeded.Inc()
		} else {
			stats.Failed++
			metrics.PushFailed.Inc()
		}
	}

	log.Printf("📊 Push dispatch for %s: %d attempted, %d succeeded, %d failed",
		notification.ID.Hex(), stats.Attempted, stats.Succeeded, stats.Failed)

	return stats
}

// sendOne performs a single push attempt and classifies the outcome
func (s *PushService) sendOne(ctx context.Context, payload []byte, sub models.PushSubscription) models.DeliveryOutcome {
	outcome := models.DeliveryOutcome{Endpoint: sub.Endpoint, UserID: sub.UserID}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		Subscriber:      s.vapidSubject,
		VAPIDPublicKey:  s.vapidPublicKey,
		VAPIDPrivateKey: s.vapidPrivateKey,
		TTL:             86400,
		Urgency:         webpush.UrgencyHigh,
	})

	if err != nil {
		log.Printf("❌ Push to %s failed: %v", sub.Endpoint, err)
		return outcome
	}
	defer resp.Body.Close()

	outcome.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		outcome.Success = true

	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		// Endpoint is permanently gone; prune the registration so the
		// registry heals itself. Pruning is decoupled from the dispatch
		// deadline: a late 410 must still remove the row.
		if err := s.subscriptions.Delete(context.Background(), sub.Endpoint); err != nil {
			log.Printf("⚠️  Failed to prune gone endpoint %s: %v", sub.Endpoint, err)
		} else {
			metrics.SubscriptionsPruned.Inc()
			log.Printf("🗑️  Pruned gone endpoint for user %s", sub.UserID)
		}

	default:
		log.Printf("⚠️  Unexpected push status %d for %s", resp.StatusCode, sub.Endpoint)
	}

	return outcome
}
