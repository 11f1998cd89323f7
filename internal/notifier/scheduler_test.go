package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/pay-aware/pay_aware/internal/logging"
	"github.com/pay-aware/pay_aware/internal/subscription"
)

type capturePublisher struct {
	events []ReminderEvent
	fail   bool
}

func (p *capturePublisher) Publish(event ReminderEvent) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.events = append(p.events, event)
	return nil
}

func newTestScheduler(t *testing.T) (*Scheduler, subscription.Repository, *capturePublisher, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := subscription.NewMemoryRepository()
	publisher := &capturePublisher{}
	sched := NewScheduler(repo, client, publisher, logging.Discard())
	return sched, repo, publisher, client
}

func dueSubscription(id string, offsetMinutes int, dueIn time.Duration) subscription.Subscription {
	nextPayment := time.Now().UTC().Add(dueIn + time.Duration(offsetMinutes)*time.Minute)
	notifyAt := nextPayment
	if offsetMinutes > 0 {
		notifyAt = nextPayment.Add(-time.Duration(offsetMinutes) * time.Minute)
	}
	return subscription.Subscription{
		ID:                 id,
		UserID:             "user-1",
		ServiceName:        "Spotify",
		Cost:               4.99,
		NextPaymentDate:    nextPayment,
		NotificationOffset: offsetMinutes,
		NotificationDate:   notifyAt,
	}
}

func TestCheckOncePublishesDueReminder(t *testing.T) {
	sched, repo, publisher, _ := newTestScheduler(t)
	ctx := context.Background()

	sub := dueSubscription("sub-1", 60, 5*time.Minute)
	if err := repo.Create(ctx, sub); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := sched.CheckOnce(ctx); err != nil {
		t.Fatalf("check: %v", err)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 event got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.SubscriptionID != "sub-1" || event.UserID != "user-1" {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.Message == "" {
		t.Fatal("expected a reminder message")
	}
}

func TestCheckOnceDeduplicates(t *testing.T) {
	sched, repo, publisher, _ := newTestScheduler(t)
	ctx := context.Background()

	if err := repo.Create(ctx, dueSubscription("sub-1", 60, 5*time.Minute)); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := sched.CheckOnce(ctx); err != nil {
		t.Fatalf("first check: %v", err)
	}
	if err := sched.CheckOnce(ctx); err != nil {
		t.Fatalf("second check: %v", err)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected a single event across scans, got %d", len(publisher.events))
	}
}

func TestCheckOnceSkipsZeroOffset(t *testing.T) {
	sched, repo, publisher, _ := newTestScheduler(t)
	ctx := context.Background()

	if err := repo.Create(ctx, dueSubscription("sub-1", 0, 5*time.Minute)); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := sched.CheckOnce(ctx); err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("expected no events for zero offset, got %d", len(publisher.events))
	}
}

func TestCheckOnceIgnoresNotYetDue(t *testing.T) {
	sched, repo, publisher, _ := newTestScheduler(t)
	ctx := context.Background()

	// Notification instant an hour out, well past the scan window.
	if err := repo.Create(ctx, dueSubscription("sub-1", 60, time.Hour)); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := sched.CheckOnce(ctx); err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("expected no events, got %d", len(publisher.events))
	}
}

func TestCheckOnceReleasesClaimOnPublishFailure(t *testing.T) {
	sched, repo, publisher, client := newTestScheduler(t)
	ctx := context.Background()

	if err := repo.Create(ctx, dueSubscription("sub-1", 60, 5*time.Minute)); err != nil {
		t.Fatalf("create: %v", err)
	}

	publisher.fail = true
	if err := sched.CheckOnce(ctx); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := client.Get(ctx, subscription.ReminderSentKey("sub-1")).Err(); err != redis.Nil {
		t.Fatalf("expected claim released, got %v", err)
	}

	// Next scan retries and succeeds.
	publisher.fail = false
	if err := sched.CheckOnce(ctx); err != nil {
		t.Fatalf("retry check: %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected retry to publish, got %d events", len(publisher.events))
	}
}
