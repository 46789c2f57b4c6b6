package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/devlaunch/launchpage-api/internal/domain/repository"
)

type ResetTokenRepository struct {
	db Querier
}

func NewResetTokenRepository(db Querier) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// Upsert stores the token keyed on the user id. The ON CONFLICT clause
// makes replacement of a previous token atomic, so concurrent
// forgot-password requests cannot leave two live tokens for one user.
func (r *ResetTokenRepository) Upsert(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO password_reset_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, created_at = now()
	`, userID, token, expiresAt)
	return err
}

func (r *ResetTokenRepository) FindValid(ctx context.Context, token string) (string, error) {
	var userID string
	err := r.db.QueryRow(ctx, `
		SELECT user_id FROM password_reset_tokens
		WHERE token = $1 AND expires_at > now()
	`, token).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", err
	}
	return userID, nil
}

func (r *ResetTokenRepository) Delete(ctx context.Context, token string) error {
	res, err := r.db.Exec(ctx, `
		DELETE FROM password_reset_tokens WHERE token = $1
	`, token)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ResetTokenRepository = (*ResetTokenRepository)(nil)
