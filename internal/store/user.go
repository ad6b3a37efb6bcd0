package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/avetrov/babel-api/internal/domain"
)

// UserStore defines the worker's interface to user data. Account management
// lives in the API layer; the worker reads users and adjusts balances.
type UserStore interface {
	// GetByID retrieves a user by their unique ID. Soft-deleted users are
	// treated as absent. Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// AddToBalance applies the signed delta to the user's token balance.
	//
	// This is a low-level operation: callers must pair it with a ledger
	// append in the same transaction. Use billing.Service.AdjustBalance
	// instead of calling this directly.
	// Returns ErrUserNotFound if the user does not exist.
	AddToBalance(ctx context.Context, userID uuid.UUID, delta int) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) UserStore
}
