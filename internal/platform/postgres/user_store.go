package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avetrov/babel-api/internal/domain"
	"github.com/avetrov/babel-api/internal/platform/logger"
	"github.com/avetrov/babel-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db store.DBTX
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. The database connection or transaction is initialized
// and managed by the caller.
func NewPostgresUserStore(db store.DBTX) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresUserStore{db: db}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// GetByID implements store.UserStore.GetByID
// Soft-deleted users are treated as absent.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, name, email, balance, created_at
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Balance,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by ID",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return nil, MapError(err)
	}

	return &user, nil
}

// AddToBalance implements store.UserStore.AddToBalance
// The delta is applied in a single UPDATE so concurrent adjustments never
// lose a change. Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) AddToBalance(ctx context.Context, userID uuid.UUID, delta int) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE users
		SET balance = balance + $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, delta, userID)
	if err != nil {
		log.Error("failed to adjust user balance",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("delta", delta))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrUserNotFound
	}

	return nil
}

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx}
}
