package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/avetrov/babel-api/internal/domain"
)

// ArticleStore defines the interface for article persistence.
type ArticleStore interface {
	// GetByID retrieves an article by its unique ID. Soft-deleted articles
	// are treated as absent. Returns ErrArticleNotFound if the article does
	// not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Article, error)

	// Create saves a new article to the store.
	// Returns validation errors from the domain Article if data is invalid.
	// Returns ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, article *domain.Article) error

	// WithTx returns a new ArticleStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) ArticleStore
}
