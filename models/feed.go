package models

// Feed event operations
const (
	FeedOpInsert = "insert"
	FeedOpUpdate = "update"
)

// FeedEvent is a realtime change signal for one recipient record. It is a
// signal only: consumers re-query authoritative state instead of trusting
// counts embedded in the event.
type FeedEvent struct {
	Type           string `json:"type"`
	Table          string `json:"table"`
	Op             string `json:"op"`
	UserID         string `json:"user_id"`
	NotificationID string `json:"notification_id"`
}

// NewRecipientEvent builds a feed event for the recipient_records stream
func NewRecipientEvent(op, userID, notificationID string) FeedEvent {
	return FeedEvent{
		Type:           "recipient_record",
		Table:          "recipient_records",
		Op:             op,
		UserID:         userID,
		NotificationID: notificationID,
	}
}
