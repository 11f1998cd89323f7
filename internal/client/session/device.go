package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pay-aware/pay_aware/internal/client/credentials"
)

// TokenUpdater is the slice of the backend the device registrar needs.
type TokenUpdater interface {
	UpdateDeviceToken(ctx context.Context, deviceToken string) error
}

// DeviceRegistrar reports the push-registration token to the backend. The
// last token sent is cached locally so an unchanged token costs no network
// round trip.
type DeviceRegistrar struct {
	store   credentials.Store
	backend TokenUpdater
	logger  *slog.Logger
}

// NewDeviceRegistrar builds the registrar.
func NewDeviceRegistrar(store credentials.Store, backend TokenUpdater, logger *slog.Logger) *DeviceRegistrar {
	return &DeviceRegistrar{store: store, backend: backend, logger: logger}
}

// Register sends the token to the backend unless it matches the cached copy.
// The cache is only updated after the backend accepted the token, so a
// failed send is retried on the next observation.
func (r *DeviceRegistrar) Register(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if cached, ok := credentials.Read(ctx, r.store, credentials.KeyDeviceToken); ok && cached == token {
		return nil
	}

	if err := r.backend.UpdateDeviceToken(ctx, token); err != nil {
		return fmt.Errorf("register device token: %w", err)
	}
	if err := r.store.Set(ctx, credentials.KeyDeviceToken, token); err != nil {
		r.logger.Warn("failed to cache device token", "error", err)
	}
	return nil
}
