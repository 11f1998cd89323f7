// Package deeplink parses app URLs into navigation intents.
package deeplink

import (
	"errors"
	"net/url"
	"strings"
	"sync"
)

// resetPasswordPath is the only deep-link destination the app recognizes.
const resetPasswordPath = "reset-password"

// ErrMissingToken marks a reset-password link without a token parameter.
// The link is unusable; routing continues as if no link were pending.
var ErrMissingToken = errors.New("reset link is missing its token")

// Link is a parsed navigation intent.
type Link struct {
	// ResetToken is set for a valid reset-password link.
	ResetToken string
}

// Parse extracts a navigation intent from a raw URL. It returns ok=false
// for URLs the app does not handle, and ErrMissingToken for a recognized
// reset-password link that lacks its token.
func Parse(raw string) (Link, bool, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Link{}, false, nil
	}

	// Custom schemes put the route in the host (payawareapp://reset-password),
	// web URLs put it in the path (/reset-password).
	route := u.Host
	if route == "" {
		route = strings.TrimPrefix(u.Path, "/")
	}
	if route != resetPasswordPath {
		return Link{}, false, nil
	}

	token := u.Query().Get("token")
	if token == "" {
		return Link{}, false, ErrMissingToken
	}
	return Link{ResetToken: token}, true, nil
}

// Source yields at most one pending link, consumed exactly once.
type Source interface {
	// Pending returns the queued link, if any, and removes it.
	Pending() (Link, bool, error)
}

// Queue is a Source fed by the platform's URL-open events.
type Queue struct {
	mu      sync.Mutex
	pending *Link
	err     error
}

// NewQueue creates an empty link queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Offer parses and queues a raw URL. An unusable reset link replaces any
// queued link with its error, so the next routing pass can surface it.
func (q *Queue) Offer(raw string) {
	link, ok, err := Parse(raw)

	q.mu.Lock()
	defer q.mu.Unlock()
	if err != nil {
		q.pending = nil
		q.err = err
		return
	}
	if ok {
		q.pending = &link
		q.err = nil
	}
}

// Pending implements Source.
func (q *Queue) Pending() (Link, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.err != nil {
		err := q.err
		q.err = nil
		return Link{}, false, err
	}
	if q.pending == nil {
		return Link{}, false, nil
	}
	link := *q.pending
	q.pending = nil
	return link, true, nil
}
