// Package api is the HTTP client the app uses to talk to the backend. All
// transport errors are classified here; callers only ever see the sentinel
// errors from errors.go or a transient failure.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// requestTimeout bounds every backend call. Mobile networks stall rather
// than fail; waiting longer only delays the routing decision.
const requestTimeout = 5 * time.Second

// User is the profile returned by the backend.
type User struct {
	ID     string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	HasPin bool   `json:"has_pin"`
}

// Session is an issued token plus its subject.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Client calls the subscription backend.
type Client struct {
	baseURL string
	http    *http.Client
	// token returns the bearer token to attach, or "" for none. Reading
	// through a func keeps the client current after PIN re-login swaps
	// the stored token.
	token func(ctx context.Context) string
}

// New creates a backend client. tokenFunc may be nil for unauthenticated
// use.
func New(baseURL string, tokenFunc func(ctx context.Context) string) *Client {
	if tokenFunc == nil {
		tokenFunc = func(context.Context) string { return "" }
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		token:   tokenFunc,
	}
}

// FetchUser loads the profile for the given user id using the stored token.
func (c *Client) FetchUser(ctx context.Context, userID string) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, &user); err != nil {
		return User{}, err
	}
	if userID != "" && user.ID != userID {
		// The token belongs to a different account than the one the
		// device remembers.
		return User{}, ErrNotFound
	}
	return user, nil
}

// Register creates an account and returns the issued session.
func (c *Client) Register(ctx context.Context, name, email, password string) (Session, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/v1/users", body, &session)
	return session, err
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	body := map[string]string{"email": email, "password": password}
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/v1/users/login", body, &session)
	return session, err
}

// LoginWithPin authenticates a remembered user id with a PIN.
func (c *Client) LoginWithPin(ctx context.Context, userID, pin string) (Session, error) {
	body := map[string]string{"user_id": userID, "pin": pin}
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/v1/users/login-with-pin", body, &session)
	return session, err
}

// SetPin registers a PIN for the authenticated user.
func (c *Client) SetPin(ctx context.Context, pin string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/users/pin", map[string]string{"pin": pin}, nil)
}

// ClearPin removes the authenticated user's server-side PIN.
func (c *Client) ClearPin(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/users/pin", nil, nil)
}

// UpdateDeviceToken reports a new push-registration token.
func (c *Client) UpdateDeviceToken(ctx context.Context, deviceToken string) error {
	return c.do(ctx, http.MethodPut, "/api/v1/users/device-token", map[string]string{"device_token": deviceToken}, nil)
}

// ForgotPassword asks the backend to email a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/users/forgot-password", map[string]string{"email": email}, nil)
}

// ResetPassword redeems a reset token for a new password.
func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	body := map[string]string{"token": resetToken, "new_password": newPassword}
	return c.do(ctx, http.MethodPost, "/api/v1/users/reset-password", body, nil)
}

// Subscription mirrors the backend's subscription resource.
type Subscription struct {
	ID                 string    `json:"id"`
	ServiceName        string    `json:"service_name"`
	Cost               float64   `json:"cost"`
	NextPaymentDate    time.Time `json:"next_payment_date"`
	NotificationOffset int       `json:"notification_offset"`
	RecurrenceType     string    `json:"recurrence_type"`
	Tag                string    `json:"tag"`
	HighPriority       bool      `json:"high_priority"`
}

// ListSubscriptions fetches the authenticated user's subscriptions.
func (c *Client) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	var subs []Subscription
	err := c.do(ctx, http.MethodGet, "/api/v1/subscriptions", nil, &subs)
	return subs, err
}

// CreateSubscription records a new subscription.
func (c *Client) CreateSubscription(ctx context.Context, sub Subscription) (Subscription, error) {
	var created Subscription
	err := c.do(ctx, http.MethodPost, "/api/v1/subscriptions", sub, &created)
	return created, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer := c.token(ctx); bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return classify(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
