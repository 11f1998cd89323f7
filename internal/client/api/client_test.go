package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticToken(token string) func(context.Context) string {
	return func(context.Context) string { return token }
}

func TestFetchUserAttachesBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user_id":"user-1","name":"Ada","email":"a@b.co","has_pin":true}`))
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken("tok-1"))
	user, err := client.FetchUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "user-1", user.ID)
	assert.True(t, user.HasPin)
}

func TestFetchUserClassifiesExpiredSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Token has expired"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken("tok-1"))
	_, err := client.FetchUser(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, IsTransient(err))
}

func TestFetchUserClassifiesNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken("tok-1"))
	_, err := client.FetchUser(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchUserTokenForDifferentAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user_id":"someone-else"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken("tok-1"))
	_, err := client.FetchUser(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken(""))
	_, err := client.FetchUser(context.Background(), "user-1")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestNetworkFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := New(srv.URL, nil)
	_, err := client.FetchUser(context.Background(), "user-1")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestLoginWithPinClassifiesInvalidPin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid pin"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	_, err := client.LoginWithPin(context.Background(), "user-1", "0000")
	assert.ErrorIs(t, err, ErrInvalidPin)
}

func TestLoginReturnsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"tok-2","user_id":"user-1"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	session, err := client.Login(context.Background(), "a@b.co", "Sup3r@pass")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", session.Token)
	assert.Equal(t, "user-1", session.UserID)
}
