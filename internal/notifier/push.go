package notifier

import (
	"fmt"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
)

// Pusher delivers a push notification to a single device.
type Pusher interface {
	Push(deviceToken, title, body string) error
}

// ExpoPusher sends notifications through Expo's push service.
type ExpoPusher struct {
	client  *expo.PushClient
	iconURL string
}

// NewExpoPusher creates a pusher. iconURL, when set, is attached as message
// data so the client can render a custom icon.
func NewExpoPusher(iconURL string) *ExpoPusher {
	return &ExpoPusher{client: expo.NewPushClient(nil), iconURL: iconURL}
}

// Push sends one message to the device's Expo token.
func (p *ExpoPusher) Push(deviceToken, title, body string) error {
	token, err := expo.NewExponentPushToken(deviceToken)
	if err != nil {
		return fmt.Errorf("invalid push token: %w", err)
	}

	message := expo.PushMessage{
		To:       []expo.ExponentPushToken{token},
		Title:    title,
		Body:     body,
		Sound:    "default",
		Priority: expo.DefaultPriority,
	}
	if p.iconURL != "" {
		message.Data = map[string]string{"icon": p.iconURL}
	}

	response, err := p.client.Publish(&message)
	if err != nil {
		return err
	}
	if err := response.ValidateResponse(); err != nil {
		return err
	}
	return nil
}
