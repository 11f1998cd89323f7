package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pay-aware/pay_aware/internal/client/api"
	"github.com/pay-aware/pay_aware/internal/client/credentials"
	"github.com/pay-aware/pay_aware/internal/client/deeplink"
	"github.com/pay-aware/pay_aware/internal/token"
)

// checkTimeout bounds one full routing pass, backend call included.
const checkTimeout = 5 * time.Second

// Backend is the slice of the API client the router needs.
type Backend interface {
	FetchUser(ctx context.Context, userID string) (api.User, error)
	LoginWithPin(ctx context.Context, userID, pin string) (api.Session, error)
	SetPin(ctx context.Context, pin string) error
	ClearPin(ctx context.Context) error
}

// Router resolves the app's landing screen from stored credentials and any
// pending deep link, and pushes the result to the navigator.
type Router struct {
	store   credentials.Store
	backend Backend
	links   deeplink.Source
	nav     Navigator
	logger  *slog.Logger
	now     func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	seq     uint64
	applied uint64
}

// NewRouter builds a session router.
func NewRouter(store credentials.Store, backend Backend, links deeplink.Source, nav Navigator, logger *slog.Logger) *Router {
	return &Router{
		store:   store,
		backend: backend,
		links:   links,
		nav:     nav,
		logger:  logger,
		now:     time.Now,
	}
}

// DecideInitialRoute computes where the app should be and navigates there.
// Concurrent invocations are coalesced into one pass sharing the result;
// stale results never overwrite newer ones.
func (r *Router) DecideInitialRoute(ctx context.Context) RouteDecision {
	result, _, _ := r.group.Do("route", func() (any, error) {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		defer cancel()

		decision := r.decide(checkCtx)
		r.apply(decision)
		return decision, nil
	})
	return result.(RouteDecision)
}

// apply forwards a decision to the navigator unless a newer pass already
// landed one.
func (r *Router) apply(decision RouteDecision) {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	if seq <= r.applied {
		r.mu.Unlock()
		return
	}
	r.applied = seq
	r.mu.Unlock()

	r.nav.Navigate(decision)
}

// decide walks the priority order: deep link first, then live session, then
// PIN fallback, then registration as the safe default.
func (r *Router) decide(ctx context.Context) RouteDecision {
	if link, ok, err := r.links.Pending(); err != nil {
		// An unusable reset link is reported, then routing continues
		// as if nothing were pending.
		r.logger.Warn("ignoring invalid reset link", "error", err)
	} else if ok {
		return RouteDecision{Screen: ScreenResetPassword, ResetToken: link.ResetToken}
	}

	authToken, hasToken := credentials.Read(ctx, r.store, credentials.KeyAuthToken)
	userID, hasUser := credentials.Read(ctx, r.store, credentials.KeyUserID)
	_, hasPin := credentials.Read(ctx, r.store, credentials.KeyPinCode)

	switch {
	case hasToken && hasUser:
		if r.expired(authToken) {
			// Local expiry detection routes away but leaves the
			// token in place: clock skew must not log anyone out.
			// Only the backend's word deletes it.
			return r.pinFallback(hasPin)
		}
		return r.checkSession(ctx, userID, hasPin)

	case hasUser && hasPin:
		return RouteDecision{Screen: ScreenEnterPin}

	default:
		return RouteDecision{Screen: ScreenRegister}
	}
}

// checkSession verifies the token against the backend and maps each failure
// class onto a destination.
func (r *Router) checkSession(ctx context.Context, userID string, hasPin bool) RouteDecision {
	_, err := r.backend.FetchUser(ctx, userID)
	switch {
	case err == nil:
		return RouteDecision{Screen: ScreenSubscriptionList}

	case errors.Is(err, api.ErrNotFound):
		// Account deleted server-side.
		return RouteDecision{Screen: ScreenRegister}

	case errors.Is(err, api.ErrSessionExpired):
		if delErr := r.store.Delete(ctx, credentials.KeyAuthToken); delErr != nil {
			r.logger.Warn("failed to delete expired token", "error", delErr)
		}
		return r.pinFallback(hasPin)

	default:
		// Network trouble is not evidence of bad credentials. Send
		// the user to Login and keep everything stored.
		r.logger.Warn("session check failed", "error", err)
		return RouteDecision{Screen: ScreenLogin}
	}
}

func (r *Router) pinFallback(hasPin bool) RouteDecision {
	if hasPin {
		return RouteDecision{Screen: ScreenEnterPin}
	}
	return RouteDecision{Screen: ScreenRegister}
}

// expired reports whether the token's embedded expiry has passed. A token
// whose expiry cannot be read is treated as expired.
func (r *Router) expired(authToken string) bool {
	expiresAt, err := token.ExpiresAt(authToken)
	if err != nil {
		r.logger.Warn("unreadable token expiry", "error", err)
		return true
	}
	return expiresAt.Before(r.now())
}
