package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// recheckInterval is how often a running app revalidates its session.
	recheckInterval = 15 * time.Minute
	// minCheckGap coalesces bursts of triggers: a foreground resume right
	// after a timer tick must not issue a second backend call.
	minCheckGap = 30 * time.Second
)

// Runner drives the router from the app lifecycle: once at startup, on every
// foreground resume, and on a fixed timer while running.
type Runner struct {
	router *Router
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	lastCheck time.Time
}

// NewRunner wraps a router with lifecycle triggers.
func NewRunner(router *Router, logger *slog.Logger) *Runner {
	return &Runner{router: router, logger: logger, now: time.Now}
}

// Run performs the startup check, then re-checks on a timer until the
// context is cancelled.
func (r *Runner) Run(ctx context.Context) {
	r.check(ctx, "startup")

	ticker := time.NewTicker(recheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.check(ctx, "timer")
		}
	}
}

// Resume is called when the app returns to the foreground.
func (r *Runner) Resume(ctx context.Context) {
	r.check(ctx, "resume")
}

// LinkReceived is called when a URL-open event arrives while running; the
// pending link makes an immediate re-route worthwhile regardless of the
// coalescing window.
func (r *Runner) LinkReceived(ctx context.Context) {
	r.mu.Lock()
	r.lastCheck = time.Time{}
	r.mu.Unlock()
	r.check(ctx, "deeplink")
}

func (r *Runner) check(ctx context.Context, trigger string) {
	r.mu.Lock()
	if since := r.now().Sub(r.lastCheck); since < minCheckGap {
		r.mu.Unlock()
		r.logger.Debug("skipping route check", "trigger", trigger, "since_last", since)
		return
	}
	r.lastCheck = r.now()
	r.mu.Unlock()

	decision := r.router.DecideInitialRoute(ctx)
	r.logger.Info("route check complete", "trigger", trigger, "screen", string(decision.Screen))
}
