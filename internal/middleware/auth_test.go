package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pay-aware/pay_aware/internal/config"
	"github.com/pay-aware/pay_aware/internal/token"
)

func newAuthApp(cfg config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/protected", JWTAuth(cfg), func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		return c.JSON(fiber.Map{"user_id": uid})
	})
	return app
}

func TestJWTAuthValidToken(t *testing.T) {
	cfg := config.Config{JWTSecret: "secret"}
	app := newAuthApp(cfg)

	signed, err := token.Issue("user-1", []byte(cfg.JWTSecret), time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signed)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["user_id"] != "user-1" {
		t.Fatalf("expected user-1 got %q", body["user_id"])
	}
}

func TestJWTAuthExpiredTokenBody(t *testing.T) {
	cfg := config.Config{JWTSecret: "secret"}
	app := newAuthApp(cfg)

	signed, err := token.Issue("user-1", []byte(cfg.JWTSecret), -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signed)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.StatusCode)
	}

	// The client matches this body verbatim to tell an expired session
	// apart from other auth failures.
	raw, _ := io.ReadAll(resp.Body)
	if string(raw) != `{"error":"Token has expired"}` {
		t.Fatalf("unexpected body %s", raw)
	}
}

func TestJWTAuthMissingAndGarbageTokens(t *testing.T) {
	cfg := config.Config{JWTSecret: "secret"}
	app := newAuthApp(cfg)

	for _, header := range []string{"", "Bearer garbage", "Basic abc"} {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("header %q: expected 401 got %d", header, resp.StatusCode)
		}
	}
}
