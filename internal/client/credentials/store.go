// Package credentials abstracts the device's secure key-value storage for
// session secrets.
package credentials

import (
	"context"
	"errors"
)

// Keys under which session secrets are stored on the device.
const (
	KeyAuthToken   = "authToken"
	KeyUserID      = "userId"
	KeyPinCode     = "pinCode"
	KeyDeviceToken = "deviceToken"
)

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("credential not found")

// Store is the device secret storage. Operations are individually atomic;
// there are no transactions across keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Read returns the stored value, or ok=false when the key is absent or the
// storage backend failed. Callers must treat an unreadable secret exactly
// like a missing one.
func Read(ctx context.Context, store Store, key string) (string, bool) {
	value, err := store.Get(ctx, key)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}
