package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// RecipientPurger is the slice of the recipient store the cron needs.
// Implemented by database.RecipientRepository.
type RecipientPurger interface {
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// MaintenanceCron removes recipient rows that stayed soft-deleted past
// the retention period
type MaintenanceCron struct {
	recipients RecipientPurger
	retention  time.Duration
	cron       *cron.Cron
}

// NewMaintenanceCron creates a new MaintenanceCron
func NewMaintenanceCron(recipients RecipientPurger, retention time.Duration) *MaintenanceCron {
	return &MaintenanceCron{
		recipients: recipients,
		retention:  retention,
		cron:       cron.New(),
	}
}

// Start schedules the daily purge
func (mc *MaintenanceCron) Start() {
	mc.cron.AddFunc("@daily", mc.purgeDeleted)
	mc.cron.Start()
	log.Println("✓ Maintenance cron started (daily purge of soft-deleted rows)")
}

// Stop stops the cron
func (mc *MaintenanceCron) Stop() {
	mc.cron.Stop()
}

// purgeDeleted removes soft-deleted rows older than the retention period
func (mc *MaintenanceCron) purgeDeleted() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-mc.retention)
	count, err := mc.recipients.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		log.Printf("❌ Purge of soft-deleted rows failed: %v", err)
		return
	}

	if count > 0 {
		log.Printf("🗑️  Purged %d soft-deleted recipient rows", count)
	}
}
