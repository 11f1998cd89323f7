package credentials

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "creds.json"))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Get(ctx, KeyAuthToken)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, KeyAuthToken, "tok-1"))
	require.NoError(t, store.Set(ctx, KeyUserID, "user-1"))

	value, err := store.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", value)

	require.NoError(t, store.Delete(ctx, KeyAuthToken))
	_, err = store.Get(ctx, KeyAuthToken)
	assert.ErrorIs(t, err, ErrNotFound)

	// Other keys are untouched by a delete.
	value, err = store.Get(ctx, KeyUserID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", value)
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	ctx := context.Background()

	first, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyPinCode, "1234"))

	second, err := NewFileStore(path)
	require.NoError(t, err)
	value, err := second.Get(ctx, KeyPinCode)
	require.NoError(t, err)
	assert.Equal(t, "1234", value)
}

func TestReadTreatsFailureAsAbsent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, ok := Read(ctx, store, KeyAuthToken)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, KeyAuthToken, "tok"))
	value, ok := Read(ctx, store, KeyAuthToken)
	assert.True(t, ok)
	assert.Equal(t, "tok", value)
}
