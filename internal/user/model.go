package user

import "time"

// User represents a registered account. PasswordHash and PINHash are bcrypt
// digests; PINHash is nil until the user sets a PIN.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	PINHash      []byte
	DeviceToken  string
	CreatedAt    time.Time
}

// HasPIN reports whether a PIN code is registered for the account.
func (u User) HasPIN() bool {
	return len(u.PINHash) > 0
}

// Credentials is the payload of a register or login request.
type Credentials struct {
	Name     string
	Email    string
	Password string
}
