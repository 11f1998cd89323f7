package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/pay-aware/pay_aware/internal/subscription"
	"github.com/pay-aware/pay_aware/internal/user"
)

const pushTitle = "Upcoming payment"

// maxSendJitter spreads pushes out so a burst of due reminders does not hit
// Expo's rate limit all at once.
const maxSendJitter = 3 * time.Second

const (
	pushAttempts   = 3
	pushRetryDelay = 5 * time.Second
)

// Consumer reads reminder events from Kafka, pushes them to the user's
// device, and records the outcome in the notification history.
type Consumer struct {
	users  user.Repository
	subs   subscription.Repository
	repo   Repository
	pusher Pusher
	logger *slog.Logger

	jitter     func() time.Duration
	now        func() time.Time
	retryDelay time.Duration
}

// NewConsumer builds a reminder consumer.
func NewConsumer(users user.Repository, subs subscription.Repository, repo Repository, pusher Pusher, logger *slog.Logger) *Consumer {
	return &Consumer{
		users:      users,
		subs:       subs,
		repo:       repo,
		pusher:     pusher,
		logger:     logger,
		jitter:     func() time.Duration { return time.Duration(rand.Int63n(int64(maxSendJitter))) },
		now:        time.Now,
		retryDelay: pushRetryDelay,
	}
}

// Run consumes the topic until the context is cancelled.
func (c *Consumer) Run(ctx context.Context, group sarama.ConsumerGroup, topic string) error {
	for {
		if err := group.Consume(ctx, []string{topic}, c); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.logger.Error("consumer group session failed", "error", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Setup implements sarama.ConsumerGroupHandler.
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error { return nil }

// Cleanup implements sarama.ConsumerGroupHandler.
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim implements sarama.ConsumerGroupHandler.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		c.handle(session.Context(), message.Value)
		session.MarkMessage(message, "")
	}
	return nil
}

func (c *Consumer) handle(ctx context.Context, payload []byte) {
	var event ReminderEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.logger.Error("dropping malformed reminder event", "error", err)
		return
	}

	if _, err := c.subs.FindByID(ctx, event.SubscriptionID, event.UserID); err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			// Deleted between scan and delivery.
			return
		}
		c.logger.Error("failed to load subscription for reminder",
			"subscription_id", event.SubscriptionID, "error", err)
		return
	}

	u, err := c.users.FindByID(ctx, event.UserID)
	if err != nil {
		c.logger.Error("failed to load user for reminder", "user_id", event.UserID, "error", err)
		return
	}
	if u.DeviceToken == "" {
		c.logger.Info("skipping reminder, user has no device token", "user_id", event.UserID)
		return
	}

	time.Sleep(c.jitter())

	status := StatusSuccess
	if err := c.sendPush(u.DeviceToken, event.Message); err != nil {
		status = StatusFailed
		c.logger.Error("push delivery failed", "user_id", event.UserID, "error", err)
	}

	record := Notification{
		ID:             uuid.NewString(),
		UserID:         event.UserID,
		SubscriptionID: event.SubscriptionID,
		Message:        event.Message,
		Status:         status,
		SentAt:         c.now().UTC(),
	}
	if err := c.repo.Create(ctx, record); err != nil {
		c.logger.Error("failed to record notification", "user_id", event.UserID, "error", err)
	}
}

// sendPush delivers with a few attempts: Expo hiccups are usually transient
// and the scheduler will not re-emit this reminder until the next cycle.
func (c *Consumer) sendPush(deviceToken, body string) error {
	var err error
	for attempt := 1; attempt <= pushAttempts; attempt++ {
		if err = c.pusher.Push(deviceToken, pushTitle, body); err == nil {
			return nil
		}
		c.logger.Warn("push attempt failed", "attempt", attempt, "error", err)
		if attempt < pushAttempts {
			time.Sleep(c.retryDelay)
		}
	}
	return err
}
