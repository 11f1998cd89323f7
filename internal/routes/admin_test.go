package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pay-aware/pay_aware/internal/config"
	"github.com/pay-aware/pay_aware/internal/logging"
)

type stubPusher struct {
	sent []string
	err  error
}

func (p *stubPusher) Push(deviceToken, title, body string) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, deviceToken+"|"+title+"|"+body)
	return nil
}

func newAdminApp(t *testing.T, pusher *stubPusher) *fiber.App {
	t.Helper()
	app := fiber.New()
	cfg := config.Config{
		AppEnv:              "dev",
		JWTSecret:           "test-secret",
		AccessTokenTTL:      time.Hour,
		ResetTokenTTL:       15 * time.Minute,
		InternalAccessToken: "hunter2",
	}
	deps := Deps{Cfg: cfg, Mailer: nopMailer{}, Pusher: pusher, Logger: logging.Discard()}
	if err := Setup(app, deps); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

func doInternalJSON(t *testing.T, app *fiber.App, path string, body any) (int, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set("X-Internal-Access-Token", "hunter2")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test POST %s: %v", path, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	return resp.StatusCode, decoded
}

func TestTestPushRequiresInternalToken(t *testing.T) {
	app := newAdminApp(t, &stubPusher{})

	status, _ := doJSON(t, app, fiber.MethodPost, "/admin/test-push", "",
		map[string]string{"device_token": "ExponentPushToken[abc]"})
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without internal token, got %d", status)
	}
}

func TestTestPushSendsNotification(t *testing.T) {
	pusher := &stubPusher{}
	app := newAdminApp(t, pusher)

	status, _ := doInternalJSON(t, app, "/admin/test-push",
		map[string]string{"device_token": "ExponentPushToken[abc]", "message": "ping"})
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	if len(pusher.sent) != 1 {
		t.Fatalf("expected one push got %d", len(pusher.sent))
	}
	if pusher.sent[0] != "ExponentPushToken[abc]|Test notification|ping" {
		t.Fatalf("unexpected push payload %q", pusher.sent[0])
	}
}

func TestTestPushRejectsMissingDeviceToken(t *testing.T) {
	app := newAdminApp(t, &stubPusher{})

	status, _ := doInternalJSON(t, app, "/admin/test-push", map[string]string{})
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 got %d", status)
	}
}

func TestTestPushReportsDeliveryFailure(t *testing.T) {
	pusher := &stubPusher{err: errors.New("expo unavailable")}
	app := newAdminApp(t, pusher)

	status, body := doInternalJSON(t, app, "/admin/test-push",
		map[string]string{"device_token": "ExponentPushToken[abc]"})
	if status != fiber.StatusBadGateway {
		t.Fatalf("expected 502 got %d", status)
	}
	if body["error"] != "failed to send notification" {
		t.Fatalf("unexpected body %v", body)
	}
}
