package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/devlaunch/launchpage-api/internal/domain/repository"
)

// Querier is the subset of pgx used by the repositories. It is satisfied
// by *pgxpool.Pool, pgx.Tx, and pgxmock pools.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB adds transaction support on top of Querier.
type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is the pgx-backed implementation of repository.Store.
type Store struct {
	db     DB
	users  *UserRepository
	tokens *ResetTokenRepository
}

func NewStore(db DB) *Store {
	return &Store{
		db:     db,
		users:  NewUserRepository(db),
		tokens: NewResetTokenRepository(db),
	}
}

func (s *Store) Users() repository.UserRepository {
	return s.users
}

func (s *Store) ResetTokens() repository.ResetTokenRepository {
	return s.tokens
}

// WithTx runs fn against a Store bound to a single transaction.
// Rollback is deferred unconditionally; after a successful commit it
// becomes a no-op, so every exit path (including panics) releases
// the transaction.
func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewStore(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var _ repository.Store = (*Store)(nil)
