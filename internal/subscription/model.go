package subscription

import (
	"errors"
	"time"
)

// Recurrence values accepted from the client. An empty string means the
// subscription does not repeat.
const (
	RecurrenceMonthly = "monthly"
	RecurrenceYearly  = "yearly"
)

// Subscription is a recurring payment a user wants to be reminded about.
// NotificationOffset is the number of minutes before NextPaymentDate at
// which a reminder should fire; NotificationDate is the precomputed instant.
type Subscription struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	ServiceName        string    `json:"service_name"`
	Cost               float64   `json:"cost"`
	NextPaymentDate    time.Time `json:"next_payment_date"`
	NotificationOffset int       `json:"notification_offset"`
	NotificationDate   time.Time `json:"notification_date"`
	RecurrenceType     string    `json:"recurrence_type"`
	Tag                string    `json:"tag"`
	HighPriority       bool      `json:"high_priority"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ErrNotFound indicates the subscription does not exist or belongs to
// another user.
var ErrNotFound = errors.New("subscription not found")
