package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pay-aware/pay_aware/internal/logging"
	"github.com/pay-aware/pay_aware/internal/subscription"
	"github.com/pay-aware/pay_aware/internal/user"
)

type capturePusher struct {
	pushes    []string
	attempts  int
	fail      bool
	failFirst int
}

func (p *capturePusher) Push(deviceToken, title, body string) error {
	p.attempts++
	if p.fail || p.attempts <= p.failFirst {
		return errors.New("expo unavailable")
	}
	p.pushes = append(p.pushes, deviceToken+"|"+title+"|"+body)
	return nil
}

func newTestConsumer(t *testing.T) (*Consumer, user.Repository, subscription.Repository, Repository, *capturePusher) {
	t.Helper()
	users := user.NewMemoryRepository()
	subs := subscription.NewMemoryRepository()
	repo := NewMemoryRepository()
	pusher := &capturePusher{}

	c := NewConsumer(users, subs, repo, pusher, logging.Discard())
	c.jitter = func() time.Duration { return 0 }
	c.retryDelay = 0
	return c, users, subs, repo, pusher
}

func seedReminder(t *testing.T, users user.Repository, subs subscription.Repository, deviceToken string) []byte {
	t.Helper()
	ctx := context.Background()

	if err := users.Create(ctx, user.User{ID: "user-1", Email: "a@b.co", DeviceToken: deviceToken}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := subs.Create(ctx, subscription.Subscription{ID: "sub-1", UserID: "user-1", ServiceName: "Netflix"}); err != nil {
		t.Fatalf("create subscription: %v", err)
	}

	payload, err := json.Marshal(ReminderEvent{UserID: "user-1", SubscriptionID: "sub-1", Message: "renews soon"})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return payload
}

func TestConsumerDeliversAndRecords(t *testing.T) {
	c, users, subs, repo, pusher := newTestConsumer(t)
	payload := seedReminder(t, users, subs, "ExponentPushToken[abc]")

	c.handle(context.Background(), payload)

	if len(pusher.pushes) != 1 {
		t.Fatalf("expected one push got %d", len(pusher.pushes))
	}

	history, err := repo.ListByUser(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one record got %d", len(history))
	}
	if history[0].Status != StatusSuccess {
		t.Fatalf("expected success status got %s", history[0].Status)
	}
}

func TestConsumerRecordsFailedDelivery(t *testing.T) {
	c, users, subs, repo, pusher := newTestConsumer(t)
	payload := seedReminder(t, users, subs, "ExponentPushToken[abc]")
	pusher.fail = true

	c.handle(context.Background(), payload)

	if pusher.attempts != pushAttempts {
		t.Fatalf("expected %d attempts before giving up, got %d", pushAttempts, pusher.attempts)
	}
	history, err := repo.ListByUser(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 1 || history[0].Status != StatusFailed {
		t.Fatalf("expected one failed record, got %+v", history)
	}
}

func TestConsumerRetriesTransientPushFailure(t *testing.T) {
	c, users, subs, repo, pusher := newTestConsumer(t)
	payload := seedReminder(t, users, subs, "ExponentPushToken[abc]")
	pusher.failFirst = 1

	c.handle(context.Background(), payload)

	if pusher.attempts != 2 {
		t.Fatalf("expected 2 attempts got %d", pusher.attempts)
	}
	if len(pusher.pushes) != 1 {
		t.Fatalf("expected the retry to deliver, got %d pushes", len(pusher.pushes))
	}
	history, err := repo.ListByUser(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 1 || history[0].Status != StatusSuccess {
		t.Fatalf("expected a success record after retry, got %+v", history)
	}
}

func TestConsumerSkipsUserWithoutDevice(t *testing.T) {
	c, users, subs, repo, pusher := newTestConsumer(t)
	payload := seedReminder(t, users, subs, "")

	c.handle(context.Background(), payload)

	if len(pusher.pushes) != 0 {
		t.Fatal("expected no push for user without device token")
	}
	history, _ := repo.ListByUser(context.Background(), "user-1", 10, 0)
	if len(history) != 0 {
		t.Fatal("expected no history record when nothing was sent")
	}
}

func TestConsumerSkipsDeletedSubscription(t *testing.T) {
	c, users, _, repo, pusher := newTestConsumer(t)

	if err := users.Create(context.Background(), user.User{ID: "user-1", Email: "a@b.co", DeviceToken: "tok"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	payload, _ := json.Marshal(ReminderEvent{UserID: "user-1", SubscriptionID: "gone", Message: "renews soon"})

	c.handle(context.Background(), payload)

	if len(pusher.pushes) != 0 {
		t.Fatal("expected no push for deleted subscription")
	}
	history, _ := repo.ListByUser(context.Background(), "user-1", 10, 0)
	if len(history) != 0 {
		t.Fatal("expected no history record")
	}
}

func TestConsumerDropsMalformedEvent(t *testing.T) {
	c, _, _, _, pusher := newTestConsumer(t)

	c.handle(context.Background(), []byte("not json"))

	if len(pusher.pushes) != 0 {
		t.Fatal("expected malformed event to be dropped")
	}
}
