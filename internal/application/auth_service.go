package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/devlaunch/launchpage-api/internal/domain/entity"
	"github.com/devlaunch/launchpage-api/internal/domain/repository"
	"github.com/devlaunch/launchpage-api/pkg/helpers"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrInvalidVerifyToken = errors.New("invalid or expired verification token")
)

const verifyTokenTTL = 24 * time.Hour

// Notifier dispatches account emails. Calls are fire-and-forget from
// the service's perspective; delivery failures are logged, never
// surfaced to the caller.
type Notifier interface {
	SendVerification(ctx context.Context, email, name, token string) error
	SendPasswordReset(ctx context.Context, email, name, token string) error
}

// Service composes the account repositories, token issuing, and
// notifications into the auth use cases.
type Service struct {
	Store         repository.Store
	JWT           *helpers.JWTManager
	Notifier      Notifier
	Redis         *redis.Client
	GCS           *storage.Client
	GCSBucket     string
	Logger        *logrus.Logger
	ResetTokenTTL time.Duration
	MailEnabled   bool
}

func NewService(store repository.Store, jwt *helpers.JWTManager, notifier Notifier, rdb *redis.Client, gcs *storage.Client, gcsBucket string, logger *logrus.Logger, resetTokenTTL time.Duration, mailEnabled bool) *Service {
	return &Service{
		Store:         store,
		JWT:           jwt,
		Notifier:      notifier,
		Redis:         rdb,
		GCS:           gcs,
		GCSBucket:     gcsBucket,
		Logger:        logger,
		ResetTokenTTL: resetTokenTTL,
		MailEnabled:   mailEnabled,
	}
}

// AuthResult is a user together with a freshly issued bearer token.
type AuthResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// NormalizeEmail lowercases and trims an email address so that the
// uniqueness constraint is case-insensitive in practice.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) warn(err error, msg string, fields logrus.Fields) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithFields(fields).Warn(msg)
}

// Register creates a new account and issues a bearer token. The
// existence check is an early exit only; the database unique
// constraint is the authoritative guard, so a losing racer still gets
// ErrEmailTaken rather than a constraint error.
func (s *Service) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = NormalizeEmail(email)

	if _, err := s.Store.Users().GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{Email: email, Password: hash, Name: name}
	if err := s.Store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	token, exp, err := s.JWT.Generate(u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	s.sendVerificationEmail(ctx, u)

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("user registered")
	}
	return &AuthResult{User: u, Token: token, ExpiresAt: exp}, nil
}

// sendVerificationEmail is best-effort: registration already succeeded,
// so any failure here is only logged.
func (s *Service) sendVerificationEmail(ctx context.Context, u *entity.User) {
	if !s.MailEnabled || s.Notifier == nil || s.Redis == nil {
		return
	}
	tok, err := helpers.NewResetToken()
	if err != nil {
		s.warn(err, "verification token generation failed", logrus.Fields{"user_id": u.ID})
		return
	}
	if err := s.Redis.Set(ctx, helpers.KeyVerifyToken(tok), u.ID, verifyTokenTTL).Err(); err != nil {
		s.warn(err, "verification token store failed", logrus.Fields{"user_id": u.ID})
		return
	}
	if err := s.Notifier.SendVerification(ctx, u.Email, u.Name, tok); err != nil {
		s.warn(err, "verification email enqueue failed", logrus.Fields{"user_id": u.ID})
	}
}

// Login validates credentials and issues a bearer token. An unknown
// email and a wrong password return the same error so responses do not
// reveal which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.Store.Users().GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.JWT.Generate(u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("user logged in")
	}
	return &AuthResult{User: u, Token: token, ExpiresAt: exp}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile applies a partial profile update; fields not provided
// keep their stored values.
func (s *Service) UpdateProfile(ctx context.Context, id string, patch repository.ProfilePatch) (*entity.User, error) {
	if patch.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}
	u, err := s.Store.Users().UpdateProfile(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrNoFields):
			return nil, ErrNoFieldsToUpdate
		}
		return nil, err
	}
	return u, nil
}

// ForgotPassword creates (or replaces) the reset token for the account
// and dispatches the reset email. It deliberately reports nothing to
// the caller: the HTTP layer answers with the same generic message
// whether or not the account exists, and internal failures are only
// logged. This is an anti-enumeration control.
func (s *Service) ForgotPassword(ctx context.Context, email string) {
	email = NormalizeEmail(email)
	u, err := s.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.warn(err, "forgot-password lookup failed", nil)
		}
		return
	}

	tok, err := helpers.NewResetToken()
	if err != nil {
		s.warn(err, "reset token generation failed", logrus.Fields{"user_id": u.ID})
		return
	}
	if err := s.Store.ResetTokens().Upsert(ctx, u.ID, tok, time.Now().Add(s.ResetTokenTTL)); err != nil {
		s.warn(err, "reset token upsert failed", logrus.Fields{"user_id": u.ID})
		return
	}

	if s.MailEnabled && s.Notifier != nil {
		if err := s.Notifier.SendPasswordReset(ctx, u.Email, u.Name, tok); err != nil {
			s.warn(err, "reset email enqueue failed", logrus.Fields{"user_id": u.ID})
		}
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("password reset token created")
	}
}

// ResetPassword consumes a reset token and replaces the credential.
// Token lookup, password update, and token deletion run in one
// transaction: either the password changes and the token is gone, or
// nothing happened. The bcrypt hash is computed before the transaction
// opens so the CPU-bound work holds no connection.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx repository.Store) error {
		userID, err := tx.ResetTokens().FindValid(ctx, token)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidResetToken
			}
			return err
		}
		if err := tx.Users().UpdatePassword(ctx, userID, hash); err != nil {
			return err
		}
		if err := tx.ResetTokens().Delete(ctx, token); err != nil {
			return err
		}
		if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"user_id": userID}).Info("password reset")
		}
		return nil
	})
	return err
}

// VerifyEmail marks the account behind a verification token as
// verified. The flag is informational; login is not gated on it.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if s.Redis == nil {
		return ErrInvalidVerifyToken
	}
	userID, err := s.Redis.Get(ctx, helpers.KeyVerifyToken(token)).Result()
	if err != nil || userID == "" {
		return ErrInvalidVerifyToken
	}
	if err := s.Store.Users().SetVerified(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidVerifyToken
		}
		return err
	}
	if err := s.Redis.Del(ctx, helpers.KeyVerifyToken(token)).Err(); err != nil {
		s.warn(err, "verification token delete failed", logrus.Fields{"user_id": userID})
	}
	return nil
}

// UploadAvatar stores the image in GCS and points the profile at the
// public URL.
func (s *Service) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (*entity.User, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return nil, errors.New("gcs not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return nil, err
	}
	return s.UpdateProfile(ctx, userID, repository.ProfilePatch{AvatarURL: &url})
}
