package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avetrov/babel-api/internal/domain"
	"github.com/avetrov/babel-api/internal/platform/logger"
	"github.com/avetrov/babel-api/internal/store"
)

// PostgresLedgerStore implements the store.LedgerStore interface
// using a PostgreSQL database as the storage backend.
type PostgresLedgerStore struct {
	db store.DBTX
}

// NewPostgresLedgerStore creates a new PostgreSQL implementation of the
// LedgerStore interface. The database connection or transaction is
// initialized and managed by the caller.
func NewPostgresLedgerStore(db store.DBTX) *PostgresLedgerStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresLedgerStore{db: db}
}

// Ensure PostgresLedgerStore implements store.LedgerStore interface
var _ store.LedgerStore = (*PostgresLedgerStore)(nil)

// Append implements store.LedgerStore.Append
// Returns store.ErrInvalidEntity if the referenced user does not exist.
func (s *PostgresLedgerStore) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	log := logger.FromContext(ctx)

	if err := entry.Validate(); err != nil {
		log.Warn("ledger entry validation failed during append",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return err
	}

	query := `
		INSERT INTO token_ledger (id, user_id, tokens_amount, cause, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.UserID,
		entry.TokensAmount,
		entry.Cause,
		entry.CreatedAt,
	)
	if err != nil {
		log.Error("failed to append ledger entry",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()),
			slog.String("user_id", entry.UserID.String()))
		return MapError(err)
	}

	log.Debug("ledger entry appended",
		slog.String("entry_id", entry.ID.String()),
		slog.Int("tokens_amount", entry.TokensAmount),
		slog.String("cause", string(entry.Cause)))
	return nil
}

// ListByUser implements store.LedgerStore.ListByUser
// A limit of zero or less means no limit.
func (s *PostgresLedgerStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT id, user_id, tokens_amount, cause, created_at
		FROM token_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*domain.LedgerEntry
	for rows.Next() {
		var entry domain.LedgerEntry
		var cause string
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.TokensAmount, &cause, &entry.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		entry.Cause = domain.BalanceCause(cause)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return entries, nil
}

// WithTx implements store.LedgerStore.WithTx
func (s *PostgresLedgerStore) WithTx(tx *sql.Tx) store.LedgerStore {
	return &PostgresLedgerStore{db: tx}
}
