package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/avetrov/babel-api/internal/domain"
)

// LedgerStore defines the interface for the append-only balance ledger.
// Entries are never updated or deleted.
type LedgerStore interface {
	// Append saves a new ledger entry.
	// Returns validation errors from the domain LedgerEntry if data is invalid.
	// Returns ErrInvalidEntity if the referenced user does not exist.
	Append(ctx context.Context, entry *domain.LedgerEntry) error

	// ListByUser retrieves a user's ledger entries, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.LedgerEntry, error)

	// WithTx returns a new LedgerStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) LedgerStore
}
