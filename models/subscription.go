package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PushSubscription represents one browser push registration. The endpoint
// is globally unique: a push endpoint belongs to exactly one browser
// registration, so writes are keyed by endpoint, not by user.
type PushSubscription struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"user_id" bson:"user_id"`
	Endpoint  string             `json:"endpoint" bson:"endpoint"`
	P256dhKey string             `json:"p256dh_key" bson:"p256dh_key"`
	AuthKey   string             `json:"auth_key" bson:"auth_key"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// PushKeys contains the per-endpoint encryption keys from the browser
type PushKeys struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

// SubscribeRequest mirrors the browser PushSubscription JSON
type SubscribeRequest struct {
	Endpoint string   `json:"endpoint" validate:"required,url"`
	Keys     PushKeys `json:"keys" validate:"required"`
}

// UnsubscribeRequest removes a registration. With an endpoint it deletes
// that row; without one it deletes every subscription of the acting user.
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint,omitempty"`
}
