package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrTaskNotFound, ErrArticleNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or references a row that does not exist.
	// Check the wrapped error for specific details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrTaskNotFound indicates that the requested translation task does not exist.
	ErrTaskNotFound = fmt.Errorf("%w: translation task", ErrNotFound)

	// ErrArticleNotFound indicates that the requested article does not exist.
	ErrArticleNotFound = fmt.Errorf("%w: article", ErrNotFound)

	// ErrLanguageNotFound indicates that the requested language does not exist.
	ErrLanguageNotFound = fmt.Errorf("%w: language", ErrNotFound)

	// ErrModelNotFound indicates that the requested AI model does not exist.
	ErrModelNotFound = fmt.Errorf("%w: ai model", ErrNotFound)

	// ErrPromptNotFound indicates that the requested style prompt does not exist.
	ErrPromptNotFound = fmt.Errorf("%w: style prompt", ErrNotFound)

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
