// Package metrics exposes prometheus counters for the notification
// delivery pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsCreated counts committed fan-outs
	NotificationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vrticko_notifications_created_total",
		Help: "Number of notifications created and fanned out.",
	})

	// DedupMerged counts create calls merged into an existing notification
	DedupMerged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vrticko_notifications_dedup_merged_total",
		Help: "Number of create calls merged into an existing notification.",
	})

	// RecipientsFannedOut counts recipient rows written by fan-outs
	RecipientsFannedOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vrticko_recipients_fanned_out_total",
		Help: "Number of recipient rows created by fan-outs.",
	})

	// PushAttempted counts push sends by outcome
	PushAttempted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vrticko_push_attempted_total",
		Help: "Number of push deliveries attempted.",
	})

	// PushSucceeded counts pushes the transport accepted
	PushSucceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vrticko_push_succeeded_total",
		Help: "Number of push deliveries accepted by the transport.",
	})

	// PushFailed counts pushes that errored or timed out
	PushFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vrticko_push_failed_total",
		Help: "Number of push deliveries that failed or timed out.",
	})

	// SubscriptionsPruned counts subscriptions removed after the transport
	// reported the endpoint gone
	SubscriptionsPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vrticko_subscriptions_pruned_total",
		Help: "Number of subscriptions pruned after a 404/410 response.",
	})
)
