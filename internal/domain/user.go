package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for User
var (
	ErrEmptyUserID = errors.New("user ID cannot be empty")
)

// User is the worker's read-mostly view of an account. Registration, login,
// and profile management live in the API layer; the worker only needs the
// identity and the token balance it charges translations against.
//
// Balance is a weakly consistent counter: many independent events (purchases,
// refunds, completed translations) adjust it concurrently, each paired with
// a ledger entry in the same transaction.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Balance   int       `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	return nil
}
