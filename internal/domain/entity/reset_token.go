package entity

import "time"

// PasswordResetToken is a single-use credential-recovery secret.
// At most one live token exists per user; a new request replaces
// the previous one.
type PasswordResetToken struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
