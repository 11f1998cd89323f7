package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxTagLength = 20

// Service validates and persists subscriptions and keeps the per-user list
// cache coherent.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a subscription service.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// Input carries the client-editable fields of a subscription.
type Input struct {
	ServiceName        string    `json:"service_name"`
	Cost               float64   `json:"cost"`
	NextPaymentDate    time.Time `json:"next_payment_date"`
	NotificationOffset int       `json:"notification_offset"`
	RecurrenceType     string    `json:"recurrence_type"`
	Tag                string    `json:"tag"`
	HighPriority       bool      `json:"high_priority"`
}

// Create validates the input and stores a new subscription for the user.
func (s *Service) Create(ctx context.Context, userID string, in Input) (Subscription, error) {
	if err := s.validate(in, true); err != nil {
		return Subscription{}, err
	}

	now := s.now().UTC()
	sub := Subscription{
		ID:                 uuid.New().String(),
		UserID:             userID,
		ServiceName:        in.ServiceName,
		Cost:               in.Cost,
		NextPaymentDate:    in.NextPaymentDate.UTC(),
		NotificationOffset: in.NotificationOffset,
		NotificationDate:   notificationDate(in.NextPaymentDate.UTC(), in.NotificationOffset),
		RecurrenceType:     in.RecurrenceType,
		Tag:                in.Tag,
		HighPriority:       in.HighPriority,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return Subscription{}, err
	}

	s.cache.InvalidateList(ctx, userID)
	s.logger.Debug("subscription created", "subscription_id", sub.ID, "user_id", userID)
	return sub, nil
}

// Update replaces the editable fields of an existing subscription and
// re-arms its reminder. The payment date of an existing subscription may be
// in the past, so the not-in-past rule applies to creation only.
func (s *Service) Update(ctx context.Context, userID, id string, in Input) (Subscription, error) {
	if err := s.validate(in, false); err != nil {
		return Subscription{}, err
	}

	existing, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return Subscription{}, err
	}

	existing.ServiceName = in.ServiceName
	existing.Cost = in.Cost
	existing.NextPaymentDate = in.NextPaymentDate.UTC()
	existing.NotificationOffset = in.NotificationOffset
	existing.NotificationDate = notificationDate(existing.NextPaymentDate, in.NotificationOffset)
	existing.RecurrenceType = in.RecurrenceType
	existing.Tag = in.Tag
	existing.HighPriority = in.HighPriority
	existing.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, existing); err != nil {
		return Subscription{}, err
	}

	s.cache.InvalidateList(ctx, userID)
	s.cache.ClearReminderSent(ctx, existing.ID)
	s.logger.Debug("subscription updated", "subscription_id", existing.ID, "user_id", userID)
	return existing, nil
}

// Delete removes a subscription owned by the user.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.cache.InvalidateList(ctx, userID)
	s.logger.Debug("subscription deleted", "subscription_id", id, "user_id", userID)
	return nil
}

// List returns the user's subscriptions, from cache when possible.
func (s *Service) List(ctx context.Context, userID string) ([]Subscription, error) {
	if subs, ok := s.cache.GetList(ctx, userID); ok {
		return subs, nil
	}

	subs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache.SetList(ctx, userID, subs)
	return subs, nil
}

// Get returns a single subscription owned by the user.
func (s *Service) Get(ctx context.Context, userID, id string) (Subscription, error) {
	return s.repo.FindByID(ctx, id, userID)
}

func (s *Service) validate(in Input, rejectPast bool) error {
	if in.ServiceName == "" || in.NextPaymentDate.IsZero() {
		return fmt.Errorf("service name and next payment date are required")
	}
	if rejectPast && in.NextPaymentDate.Before(s.now()) {
		return fmt.Errorf("next payment date cannot be in the past")
	}
	if in.Cost <= 0 {
		return fmt.Errorf("cost must be greater than zero")
	}
	if in.NotificationOffset < 0 {
		return fmt.Errorf("notification offset cannot be negative")
	}
	if utf8.RuneCountInString(in.Tag) > maxTagLength {
		return fmt.Errorf("tag must be at most %d characters", maxTagLength)
	}
	if strings.ContainsRune(in.Tag, ' ') {
		return fmt.Errorf("tag must be a single word")
	}
	switch in.RecurrenceType {
	case "", RecurrenceMonthly, RecurrenceYearly:
	default:
		return fmt.Errorf("recurrence type must be %q or %q", RecurrenceMonthly, RecurrenceYearly)
	}
	return nil
}

// notificationDate derives the reminder instant: offset minutes before the
// payment, or the payment instant itself when no offset is set.
func notificationDate(nextPayment time.Time, offsetMinutes int) time.Time {
	if offsetMinutes > 0 {
		return nextPayment.Add(-time.Duration(offsetMinutes) * time.Minute)
	}
	return nextPayment
}
