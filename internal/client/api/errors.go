package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors forming the client-side failure taxonomy. Everything the
// transport layer cannot classify stays an ordinary error and is treated as
// transient by callers.
var (
	ErrSessionExpired = errors.New("session expired")
	ErrNotFound       = errors.New("not found")
	ErrInvalidPin     = errors.New("invalid pin")
)

// expiredTokenMessage is the exact body the backend sends with a 401 when
// the bearer token has expired. Other 401 bodies mean bad credentials, not
// an expired session.
const expiredTokenMessage = "Token has expired"

// classify maps a raw HTTP status and response body onto the taxonomy.
// Unrecognized failures come back as plain errors so callers fall into the
// transient branch.
func classify(status int, body []byte) error {
	message := errorMessage(body)

	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		if strings.Contains(message, expiredTokenMessage) {
			return ErrSessionExpired
		}
		if strings.Contains(strings.ToLower(message), "pin") {
			return ErrInvalidPin
		}
		return fmt.Errorf("unauthorized: %s", message)
	default:
		if message == "" {
			return fmt.Errorf("backend returned status %d", status)
		}
		return fmt.Errorf("backend returned status %d: %s", status, message)
	}
}

// errorMessage extracts the error string from a JSON error body, falling
// back to the raw body for plain-text responses.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}

// IsTransient reports whether the error is outside the classified taxonomy,
// meaning a network failure, timeout, or unrecognized server response.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrSessionExpired) &&
		!errors.Is(err, ErrNotFound) &&
		!errors.Is(err, ErrInvalidPin)
}
