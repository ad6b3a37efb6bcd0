package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// BalanceCause classifies what a balance change was for.
type BalanceCause string

// Possible balance change causes.
const (
	BalanceCausePurchase    BalanceCause = "purchase"
	BalanceCauseRefund      BalanceCause = "refund"
	BalanceCauseTranslation BalanceCause = "translation"
)

// Common validation errors for LedgerEntry
var (
	ErrEmptyLedgerEntryID  = errors.New("ledger entry ID cannot be empty")
	ErrEmptyLedgerUserID   = errors.New("ledger entry user ID cannot be empty")
	ErrZeroLedgerAmount    = errors.New("ledger entry amount cannot be zero")
	ErrInvalidBalanceCause = errors.New("invalid balance change cause")
)

// LedgerEntry is one immutable record of a balance change. Entries are only
// ever appended, never updated or deleted; every balance mutation produces
// exactly one entry in the same transaction.
type LedgerEntry struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	// TokensAmount is the signed delta applied to the balance: positive for
	// purchases and refunds, negative for translations.
	TokensAmount int `json:"tokens_amount"`

	Cause     BalanceCause `json:"cause"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewLedgerEntry creates a ledger entry for the given balance change.
// Returns an error if validation fails.
func NewLedgerEntry(userID uuid.UUID, tokensAmount int, cause BalanceCause) (*LedgerEntry, error) {
	entry := &LedgerEntry{
		ID:           uuid.New(),
		UserID:       userID,
		TokensAmount: tokensAmount,
		Cause:        cause,
		CreatedAt:    time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the LedgerEntry has valid data.
func (e *LedgerEntry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyLedgerEntryID
	}

	if e.UserID == uuid.Nil {
		return ErrEmptyLedgerUserID
	}

	if e.TokensAmount == 0 {
		return ErrZeroLedgerAmount
	}

	if !isValidBalanceCause(e.Cause) {
		return ErrInvalidBalanceCause
	}

	return nil
}

// isValidBalanceCause checks if the given cause is a valid BalanceCause.
func isValidBalanceCause(cause BalanceCause) bool {
	switch cause {
	case BalanceCausePurchase, BalanceCauseRefund, BalanceCauseTranslation:
		return true
	default:
		return false
	}
}
