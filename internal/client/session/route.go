// Package session decides which screen the app lands on from the device's
// credential state, and keeps that decision current while the app runs.
package session

// Screen identifies a navigation destination.
type Screen string

// Destinations the router can resolve to.
const (
	ScreenRegister         Screen = "Register"
	ScreenLogin            Screen = "Login"
	ScreenEnterPin         Screen = "EnterPin"
	ScreenSubscriptionList Screen = "SubscriptionList"
	ScreenResetPassword    Screen = "ResetPassword"
)

// RouteDecision is the router's output: a destination plus the reset token
// when the destination is the reset screen.
type RouteDecision struct {
	Screen     Screen
	ResetToken string
}

// Navigator receives route decisions. The UI layer implements it; tests use
// a recording fake.
type Navigator interface {
	Navigate(decision RouteDecision)
}
