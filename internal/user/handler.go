package user

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/pay-aware/pay_aware/internal/token"
)

// Handler exposes account and authentication endpoints.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler creates a user handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Register creates a new account and returns a bearer token.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid user data")
	}

	res, err := h.svc.Register(c.UserContext(), Credentials{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return fiber.NewError(http.StatusConflict, ErrEmailTaken.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	h.logger.Info("user registered", "user_id", res.UserID)
	return c.Status(http.StatusCreated).JSON(authResponse{Token: res.Token, UserID: res.UserID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates email/password credentials.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request")
	}

	res, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, ErrNotFound.Error())
		case errors.Is(err, ErrInvalidCredentials):
			return fiber.NewError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "login failed")
		}
	}

	return c.JSON(authResponse{Token: res.Token, UserID: res.UserID})
}

type pinLoginRequest struct {
	UserID string `json:"user_id"`
	Pin    string `json:"pin"`
}

// LoginWithPin authenticates a remembered user id with a 4-digit PIN.
func (h *Handler) LoginWithPin(c *fiber.Ctx) error {
	var req pinLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request")
	}
	if req.UserID == "" || req.Pin == "" {
		return fiber.NewError(http.StatusBadRequest, "user_id and pin are required")
	}

	res, err := h.svc.LoginWithPin(c.UserContext(), req.UserID, req.Pin)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, ErrNotFound.Error())
		case errors.Is(err, ErrInvalidPin), errors.Is(err, ErrNoPin):
			return fiber.NewError(http.StatusUnauthorized, ErrInvalidPin.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "pin login failed")
		}
	}

	return c.JSON(authResponse{Token: res.Token, UserID: res.UserID})
}

type setPinRequest struct {
	Pin string `json:"pin"`
}

// SetPin registers a PIN for the authenticated user.
func (h *Handler) SetPin(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return c.SendStatus(http.StatusUnauthorized)
	}

	var req setPinRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request")
	}

	if err := h.svc.SetPin(c.UserContext(), uid, req.Pin); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, ErrNotFound.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{"message": "pin set successfully"})
}

// ClearPin removes the registered PIN for the authenticated user.
func (h *Handler) ClearPin(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return c.SendStatus(http.StatusUnauthorized)
	}

	if err := h.svc.ClearPin(c.UserContext(), uid); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, ErrNotFound.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "failed to clear pin")
	}

	return c.JSON(fiber.Map{"message": "pin cleared"})
}

type deviceTokenRequest struct {
	DeviceToken string `json:"device_token"`
}

// UpdateDeviceToken stores the push-registration token of the caller's device.
func (h *Handler) UpdateDeviceToken(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return c.SendStatus(http.StatusUnauthorized)
	}

	var req deviceTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request")
	}

	if err := h.svc.UpdateDeviceToken(c.UserContext(), uid, req.DeviceToken); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, ErrNotFound.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{"message": "device token updated successfully"})
}

// Profile returns the authenticated user's profile. The mobile client calls
// it on startup to confirm the stored session still maps to a live account.
func (h *Handler) Profile(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return c.SendStatus(http.StatusUnauthorized)
	}

	user, err := h.svc.GetByID(c.UserContext(), uid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, ErrNotFound.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "failed to fetch user")
	}

	return c.JSON(fiber.Map{
		"user_id": user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"has_pin": user.HasPIN(),
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword mails a reset link when the email is known. The response is
// identical either way.
func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil || !ValidEmail(req.Email) {
		return fiber.NewError(http.StatusBadRequest, "invalid email format")
	}

	if err := h.svc.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		h.logger.Error("password reset request failed", "error", err)
		return fiber.NewError(http.StatusInternalServerError, "failed to process request")
	}

	return c.JSON(fiber.Map{"message": "If the email exists, a reset link will be sent"})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword validates a reset token and replaces the account password.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request")
	}

	if err := h.svc.ResetPassword(c.UserContext(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, token.ErrInvalid):
			return fiber.NewError(http.StatusUnauthorized, "invalid or expired token")
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, ErrNotFound.Error())
		default:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}

	return c.JSON(fiber.Map{"success": true, "message": "Password reset successful"})
}

// ResetRedirect bounces a browser opening the emailed link into the mobile
// app via its custom URL scheme.
func (h *Handler) ResetRedirect(c *fiber.Ctx) error {
	resetToken := c.Query("token")
	if resetToken == "" {
		return fiber.NewError(http.StatusBadRequest, "invalid or missing token")
	}

	appLink := fmt.Sprintf("payawareapp://reset-password?token=%s", resetToken)
	return c.Redirect(appLink, http.StatusTemporaryRedirect)
}
