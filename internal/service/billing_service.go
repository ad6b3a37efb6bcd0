package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avetrov/babel-api/internal/domain"
	"github.com/avetrov/babel-api/internal/platform/logger"
	"github.com/avetrov/babel-api/internal/store"
)

// BillingService is the only code path that mutates user balances. Every
// balance change is paired with a ledger entry in the same transaction, so
// the ledger always sums to the balance.
type BillingService struct {
	db     *sql.DB
	users  store.UserStore
	ledger store.LedgerStore

	// chargeTokens disables billing entirely when false. Used in
	// environments where translations run without charging.
	chargeTokens bool
}

// NewBillingService creates a BillingService over the given stores.
func NewBillingService(db *sql.DB, users store.UserStore, ledger store.LedgerStore, chargeTokens bool) *BillingService {
	return &BillingService{
		db:           db,
		users:        users,
		ledger:       ledger,
		chargeTokens: chargeTokens,
	}
}

// AdjustBalanceTx applies the signed delta to the user's balance and appends
// the matching ledger entry, both through the caller's transaction. Callers
// that do not already hold a transaction use AdjustBalance instead.
//
// A zero delta is a no-op: nothing changed, and the ledger schema rejects
// zero-amount entries, so recording one is impossible anyway. Task completion
// never passes zero because the orchestrator floors the cost at one token.
// When charging is disabled the call is a no-op as well.
func (s *BillingService) AdjustBalanceTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID, delta int, cause domain.BalanceCause) error {
	log := logger.FromContext(ctx)

	if !s.chargeTokens {
		log.Debug("charging disabled, skipping balance adjustment",
			slog.String("user_id", userID.String()),
			slog.Int("delta", delta),
			slog.String("cause", string(cause)))
		return nil
	}
	if delta == 0 {
		return nil
	}

	entry, err := domain.NewLedgerEntry(userID, delta, cause)
	if err != nil {
		return fmt.Errorf("building ledger entry: %w", err)
	}

	if err := s.users.WithTx(tx).AddToBalance(ctx, userID, delta); err != nil {
		return fmt.Errorf("adjusting balance for user %s: %w", userID, err)
	}
	if err := s.ledger.WithTx(tx).Append(ctx, entry); err != nil {
		return fmt.Errorf("recording ledger entry for user %s: %w", userID, err)
	}

	log.Debug("balance adjusted",
		slog.String("user_id", userID.String()),
		slog.Int("delta", delta),
		slog.String("cause", string(cause)))
	return nil
}

// AdjustBalance is AdjustBalanceTx inside its own transaction.
func (s *BillingService) AdjustBalance(ctx context.Context, userID uuid.UUID, delta int, cause domain.BalanceCause) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.AdjustBalanceTx(ctx, tx, userID, delta, cause)
	})
}
