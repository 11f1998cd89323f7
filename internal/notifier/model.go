package notifier

import (
	"errors"
	"time"
)

// Delivery status values recorded for each reminder attempt.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Notification is the record of one reminder delivered (or attempted) for a
// subscription.
type Notification struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	SubscriptionID string     `json:"subscription_id"`
	Message        string     `json:"message"`
	Status         string     `json:"status"`
	SentAt         time.Time  `json:"sent_at"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
}

// ReminderEvent is the payload published to Kafka when a subscription's
// reminder instant arrives. The consumer resolves the device token and
// sends the push.
type ReminderEvent struct {
	UserID         string `json:"user_id"`
	SubscriptionID string `json:"subscription_id"`
	Message        string `json:"message"`
}

// ErrNotFound indicates the notification does not exist.
var ErrNotFound = errors.New("notification not found")
