package repository

import (
	"context"
	"errors"
	"time"

	"github.com/devlaunch/launchpage-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when a lookup resolves to no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when an insert violates the
	// unique constraint on users.email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNoFields is returned when a profile update provides nothing to change.
	ErrNoFields = errors.New("no fields to update")
)

// ProfilePatch is a partial profile update. Nil fields are left unchanged.
type ProfilePatch struct {
	Name      *string
	Bio       *string
	AvatarURL *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ProfilePatch) IsEmpty() bool {
	return p.Name == nil && p.Bio == nil && p.AvatarURL == nil
}

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*entity.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	SetVerified(ctx context.Context, id string) error
}

// ResetTokenRepository defines password reset token persistence.
type ResetTokenRepository interface {
	// Upsert stores a token for the user, replacing any previous one.
	Upsert(ctx context.Context, userID, token string, expiresAt time.Time) error
	// FindValid returns the owning user id for a token that has not expired.
	FindValid(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// Store bundles the repositories and exposes a transactional scope.
// WithTx runs fn against a Store bound to a single transaction; the
// transaction commits when fn returns nil and rolls back otherwise.
type Store interface {
	Users() UserRepository
	ResetTokens() ResetTokenRepository
	WithTx(ctx context.Context, fn func(Store) error) error
}
