package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification targets
const (
	TargetAll        = "all"
	TargetParents    = "parents"
	TargetTeachers   = "teachers"
	TargetIndividual = "individual"
)

// Notification is an authored notification, immutable after creation.
// The recipient set is snapshotted into user_notifications at creation
// time; users joining the target audience later never receive it.
type Notification struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title            string             `json:"title" bson:"title"`
	Message          string             `json:"message" bson:"message"`
	Target           string             `json:"target" bson:"target"`
	IndividualUserID string             `json:"individual_user_id,omitempty" bson:"individual_user_id,omitempty"`
	DedupKey         string             `json:"-" bson:"dedup_key,omitempty"` // caller-supplied idempotency key
	CreatedBy        string             `json:"created_by" bson:"created_by"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
}

// RecipientRecord is the per-(notification, user) row tracking read state.
// Exactly one row exists per resolved recipient, created in the same
// transaction as the parent notification.
type RecipientRecord struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	NotificationID primitive.ObjectID `json:"notification_id" bson:"notification_id"`
	UserID         string             `json:"user_id" bson:"user_id"`
	ReadAt         *time.Time         `json:"read_at" bson:"read_at"`
	DeletedAt      *time.Time         `json:"deleted_at" bson:"deleted_at"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

// CreateNotificationRequest represents the create-notification request body
type CreateNotificationRequest struct {
	Title            string `json:"title" validate:"required"`
	Message          string `json:"message" validate:"required"`
	Target           string `json:"target" validate:"required,oneof=all parents teachers individual"`
	IndividualUserID string `json:"individual_user_id,omitempty"`
	IdempotencyKey   string `json:"idempotency_key,omitempty"`
}

// DeliveryStats aggregates push dispatch outcomes for one notification.
// Informational only: delivery failure never fails the create call.
type DeliveryStats struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// DeliveryOutcome is the transient per-endpoint result of one push attempt
type DeliveryOutcome struct {
	Endpoint   string
	UserID     string
	Success    bool
	StatusCode int
}

// PushPayload is the JSON payload handed to the push transport
type PushPayload struct {
	Title          string `json:"title"`
	Body           string `json:"body"`
	Icon           string `json:"icon,omitempty"`
	Badge          string `json:"badge,omitempty"`
	NotificationID string `json:"notificationId"`
	URL            string `json:"url"`
}

// CreateNotificationResponse represents the create-notification response
type CreateNotificationResponse struct {
	Notification *Notification `json:"notification"`
	Deduplicated bool          `json:"deduplicated"`
	Recipients   int           `json:"recipients"`
	Delivery     DeliveryStats `json:"delivery"`
}

// UserNotification joins a notification with the caller's recipient row
// for the list endpoint.
type UserNotification struct {
	Notification Notification `json:"notification"`
	ReadAt       *time.Time   `json:"read_at"`
}
