package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pay-aware/pay_aware/internal/client/credentials"
	"github.com/pay-aware/pay_aware/internal/logging"
)

func TestResumeCoalescesWithRecentCheck(t *testing.T) {
	f := newFixture()
	f.set(t, credentials.KeyAuthToken, freshToken(t))
	f.set(t, credentials.KeyUserID, "user-42")

	runner := NewRunner(f.router, logging.Discard())
	ctx := context.Background()

	runner.Resume(ctx)
	runner.Resume(ctx)
	runner.Resume(ctx)

	assert.Equal(t, 1, f.backend.fetchCalls, "resumes inside the coalescing window must not re-check")
}

func TestResumeRechecksAfterWindow(t *testing.T) {
	f := newFixture()
	f.set(t, credentials.KeyAuthToken, freshToken(t))
	f.set(t, credentials.KeyUserID, "user-42")

	runner := NewRunner(f.router, logging.Discard())
	current := time.Now()
	runner.now = func() time.Time { return current }
	ctx := context.Background()

	runner.Resume(ctx)
	current = current.Add(minCheckGap + time.Second)
	runner.Resume(ctx)

	assert.Equal(t, 2, f.backend.fetchCalls)
}

func TestLinkReceivedBypassesCoalescing(t *testing.T) {
	f := newFixture()
	f.set(t, credentials.KeyAuthToken, freshToken(t))
	f.set(t, credentials.KeyUserID, "user-42")

	runner := NewRunner(f.router, logging.Discard())
	ctx := context.Background()

	runner.Resume(ctx)
	f.links.Offer("payawareapp://reset-password?token=abc")
	runner.LinkReceived(ctx)

	assert.Equal(t, ScreenResetPassword, f.nav.last(t).Screen)
}
