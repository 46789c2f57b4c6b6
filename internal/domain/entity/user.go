package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds the bcrypt hash and must never be serialized
// into API responses.
type User struct {
	ID            string
	Email         string
	Password      string
	Name          string
	Bio           string
	AvatarURL     string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
