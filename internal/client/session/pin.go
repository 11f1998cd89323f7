package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pay-aware/pay_aware/internal/client/credentials"
)

// PinFlow implements the PIN sub-flows: quick re-login, enrolling a PIN,
// and the forgot-PIN escape hatch.
type PinFlow struct {
	store   credentials.Store
	backend Backend
	nav     Navigator
	logger  *slog.Logger
}

// NewPinFlow builds the PIN flow.
func NewPinFlow(store credentials.Store, backend Backend, nav Navigator, logger *slog.Logger) *PinFlow {
	return &PinFlow{store: store, backend: backend, nav: nav, logger: logger}
}

// Login exchanges the remembered user id plus PIN for a fresh token, stores
// it, and lands on the subscription list. A wrong PIN comes back as
// api.ErrInvalidPin with nothing mutated, so the caller can offer a retry.
func (f *PinFlow) Login(ctx context.Context, pin string) error {
	userID, ok := credentials.Read(ctx, f.store, credentials.KeyUserID)
	if !ok {
		return fmt.Errorf("no remembered user for pin login")
	}

	session, err := f.backend.LoginWithPin(ctx, userID, pin)
	if err != nil {
		return err
	}

	if err := f.store.Set(ctx, credentials.KeyAuthToken, session.Token); err != nil {
		return fmt.Errorf("store refreshed token: %w", err)
	}

	f.nav.Navigate(RouteDecision{Screen: ScreenSubscriptionList})
	return nil
}

// Enroll registers a PIN with the backend and remembers it locally.
func (f *PinFlow) Enroll(ctx context.Context, pin string) error {
	if err := f.backend.SetPin(ctx, pin); err != nil {
		return err
	}
	if err := f.store.Set(ctx, credentials.KeyPinCode, pin); err != nil {
		return fmt.Errorf("store pin: %w", err)
	}
	return nil
}

// Forget discards the PIN on both sides and forces a full login. The
// backend clear is best effort: the device may be offline, and a PIN left
// registered server-side is unusable without the local copy anyway.
func (f *PinFlow) Forget(ctx context.Context) {
	if err := f.store.Delete(ctx, credentials.KeyPinCode); err != nil {
		f.logger.Warn("failed to delete local pin", "error", err)
	}
	if err := f.backend.ClearPin(ctx); err != nil {
		f.logger.Warn("failed to clear server-side pin", "error", err)
	}

	f.nav.Navigate(RouteDecision{Screen: ScreenLogin})
}
