package deeplink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResetLink(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantOK    bool
		wantToken string
		wantErr   error
	}{
		{name: "custom scheme", raw: "payawareapp://reset-password?token=abc123", wantOK: true, wantToken: "abc123"},
		{name: "web path", raw: "https://api.example.com/reset-password?token=abc123", wantOK: true, wantToken: "abc123"},
		{name: "missing token", raw: "payawareapp://reset-password", wantErr: ErrMissingToken},
		{name: "empty token", raw: "payawareapp://reset-password?token=", wantErr: ErrMissingToken},
		{name: "other route", raw: "payawareapp://settings"},
		{name: "unrelated url", raw: "https://example.com/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, ok, err := Parse(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantToken, link.ResetToken)
		})
	}
}

func TestQueueConsumesOnce(t *testing.T) {
	q := NewQueue()
	q.Offer("payawareapp://reset-password?token=abc")

	link, ok, err := q.Pending()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", link.ResetToken)

	_, ok, err = q.Pending()
	require.NoError(t, err)
	assert.False(t, ok, "link must be consumed exactly once")
}

func TestQueueSurfacesInvalidLinkOnce(t *testing.T) {
	q := NewQueue()
	q.Offer("payawareapp://reset-password")

	_, ok, err := q.Pending()
	assert.ErrorIs(t, err, ErrMissingToken)
	assert.False(t, ok)

	_, ok, err = q.Pending()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueueIgnoresUnrelatedURLs(t *testing.T) {
	q := NewQueue()
	q.Offer("https://example.com/")

	_, ok, err := q.Pending()
	require.NoError(t, err)
	assert.False(t, ok)
}
