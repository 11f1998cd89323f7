package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/pay-aware/pay_aware/internal/subscription"
)

// scanWindow is how far ahead of each tick the scheduler looks for due
// reminders. It must be at least as long as the cron cadence so no
// notification date falls between two scans.
const scanWindow = 15 * time.Minute

// Publisher emits reminder events toward the delivery pipeline.
type Publisher interface {
	Publish(event ReminderEvent) error
}

// Scheduler scans for subscriptions whose notification date has arrived and
// publishes one reminder event per subscription per billing cycle.
type Scheduler struct {
	subs     subscription.Repository
	redis    *redis.Client
	producer Publisher
	logger   *slog.Logger
	cron     *cron.Cron
	now      func() time.Time
}

// NewScheduler builds a reminder scheduler.
func NewScheduler(subs subscription.Repository, client *redis.Client, producer Publisher, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		subs:     subs,
		redis:    client,
		producer: producer,
		logger:   logger,
		cron:     cron.New(),
		now:      time.Now,
	}
}

// Start registers the scan job and begins the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("*/5 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.CheckOnce(ctx); err != nil {
			s.logger.Error("reminder scan failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// CheckOnce runs a single scan: every subscription whose notification date
// falls inside the window gets one event, deduplicated through Redis until
// its payment date passes.
func (s *Scheduler) CheckOnce(ctx context.Context) error {
	now := s.now().UTC()
	due, err := s.subs.DueBetween(ctx, now, now.Add(scanWindow))
	if err != nil {
		return fmt.Errorf("scan due subscriptions: %w", err)
	}

	for _, sub := range due {
		if sub.NotificationOffset == 0 && sub.NotificationDate.Equal(sub.NextPaymentDate) {
			// Offset zero means the user asked not to be reminded
			// ahead of time.
			continue
		}
		if !s.claim(ctx, sub, now) {
			continue
		}
		event := ReminderEvent{
			UserID:         sub.UserID,
			SubscriptionID: sub.ID,
			Message:        reminderMessage(sub),
		}
		if err := s.producer.Publish(event); err != nil {
			s.logger.Error("failed to publish reminder",
				"subscription_id", sub.ID, "error", err)
			// Release the claim so the next scan retries.
			s.release(ctx, sub.ID)
			continue
		}
		s.logger.Info("reminder published",
			"subscription_id", sub.ID, "user_id", sub.UserID)
	}
	return nil
}

// claim atomically marks the subscription's reminder as sent for the current
// cycle. Returns false when another scan already claimed it.
func (s *Scheduler) claim(ctx context.Context, sub subscription.Subscription, now time.Time) bool {
	ttl := sub.NextPaymentDate.Sub(now)
	if ttl <= 0 {
		ttl = time.Hour
	}
	ok, err := s.redis.SetNX(ctx, subscription.ReminderSentKey(sub.ID), now.Format(time.RFC3339), ttl).Result()
	if err != nil {
		s.logger.Warn("reminder dedup check failed", "subscription_id", sub.ID, "error", err)
		return false
	}
	return ok
}

func (s *Scheduler) release(ctx context.Context, subscriptionID string) {
	if err := s.redis.Del(ctx, subscription.ReminderSentKey(subscriptionID)).Err(); err != nil {
		s.logger.Warn("failed to release reminder claim", "subscription_id", subscriptionID, "error", err)
	}
}

func reminderMessage(sub subscription.Subscription) string {
	return fmt.Sprintf("Your %s subscription (%.2f) renews on %s.",
		sub.ServiceName, sub.Cost, sub.NextPaymentDate.Format("Jan 2, 2006"))
}
