package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pay-aware/pay_aware/internal/config"
	"github.com/pay-aware/pay_aware/internal/token"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Mailer delivers transactional email.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// Service manages account lifecycle and authentication.
type Service struct {
	repo   Repository
	cfg    config.Config
	mailer Mailer
	logger *slog.Logger
}

// NewService creates a user service.
func NewService(repo Repository, cfg config.Config, mailer Mailer, logger *slog.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, mailer: mailer, logger: logger}
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	UserID string
	Token  string
}

// Register creates a new account and issues a bearer token for it.
func (s *Service) Register(ctx context.Context, creds Credentials) (AuthResult, error) {
	if !ValidEmail(creds.Email) {
		return AuthResult{}, fmt.Errorf("invalid email format")
	}
	if !ValidPassword(creds.Password) {
		return AuthResult{}, fmt.Errorf("password does not meet security requirements")
	}

	if _, err := s.repo.FindByEmail(ctx, creds.Email); err == nil {
		return AuthResult{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, err
	}

	user := User{
		ID:           uuid.New().String(),
		Name:         creds.Name,
		Email:        creds.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	return s.issue(user.ID)
}

// Login verifies email/password credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	if !ValidEmail(email) {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, ErrNotFound
		}
		return AuthResult{}, err
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issue(user.ID)
}

// LoginWithPin verifies the 4-digit PIN for a remembered user id and issues
// a fresh bearer token. Lockout and rate limiting are handled at the HTTP
// layer, not here.
func (s *Service) LoginWithPin(ctx context.Context, userID, pin string) (AuthResult, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return AuthResult{}, err
	}
	if !user.HasPIN() {
		return AuthResult{}, ErrNoPin
	}
	if bcrypt.CompareHashAndPassword(user.PINHash, []byte(pin)) != nil {
		return AuthResult{}, ErrInvalidPin
	}
	return s.issue(user.ID)
}

// SetPin registers a 4-digit PIN for the user.
func (s *Service) SetPin(ctx context.Context, userID, pin string) error {
	if !ValidPin(pin) {
		return fmt.Errorf("pin must be exactly 4 digits")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePIN(ctx, userID, hash)
}

// ClearPin removes the registered PIN, forcing full re-authentication before
// a new one can be set.
func (s *Service) ClearPin(ctx context.Context, userID string) error {
	return s.repo.UpdatePIN(ctx, userID, nil)
}

// UpdateDeviceToken stores the push-registration token for the user.
func (s *Service) UpdateDeviceToken(ctx context.Context, userID, deviceToken string) error {
	if deviceToken == "" {
		return fmt.Errorf("device token cannot be empty")
	}
	return s.repo.UpdateDeviceToken(ctx, userID, deviceToken)
}

// GetByID fetches a user profile.
func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	return s.repo.FindByID(ctx, userID)
}

// RequestPasswordReset issues a short-lived reset token for the account and
// mails a reset link. An unknown email is not an error: the caller responds
// with the same message either way so account existence is not leaked.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	resetToken, err := token.Issue(user.ID, []byte(s.cfg.JWTSecret), s.cfg.ResetTokenTTL)
	if err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.ResetPasswordURL, resetToken)
	body := fmt.Sprintf(`<p>To reset your password, follow the link below:</p><a href="%s">Reset password</a>`, resetLink)

	if err := s.mailer.Send(user.Email, "Password Reset Request", body); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	s.logger.Info("password reset email sent", "user_id", user.ID)
	return nil
}

// ResetPassword validates a reset token and replaces the account password.
// The registered PIN is cleared at the same time: the reset flow is the
// recovery path of last resort and must invalidate lighter-weight factors.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	userID, err := token.Verify(resetToken, []byte(s.cfg.JWTSecret))
	if err != nil {
		return token.ErrInvalid
	}

	if !ValidPassword(newPassword) {
		return fmt.Errorf("password does not meet security requirements")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info("password reset completed", "user_id", userID)
	return nil
}

func (s *Service) issue(userID string) (AuthResult, error) {
	signed, err := token.Issue(userID, []byte(s.cfg.JWTSecret), s.cfg.AccessTokenTTL)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{UserID: userID, Token: signed}, nil
}

// ValidEmail reports whether the string looks like an email address.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPassword checks the minimum security requirements: at least six
// characters with an upper-case letter, a lower-case letter, a digit and a
// punctuation or symbol character.
func ValidPassword(password string) bool {
	var hasUpper, hasLower, hasNumber, hasSpecial bool
	const minLen = 6

	if len(password) < minLen {
		return false
	}
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}

// ValidPin reports whether the string is exactly four ASCII digits.
func ValidPin(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
