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

// PostgresArticleStore implements the store.ArticleStore interface
// using a PostgreSQL database as the storage backend.
type PostgresArticleStore struct {
	db store.DBTX
}

// NewPostgresArticleStore creates a new PostgreSQL implementation of the
// ArticleStore interface. The database connection or transaction is
// initialized and managed by the caller.
func NewPostgresArticleStore(db store.DBTX) *PostgresArticleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresArticleStore{db: db}
}

// Ensure PostgresArticleStore implements store.ArticleStore interface
var _ store.ArticleStore = (*PostgresArticleStore)(nil)

// GetByID implements store.ArticleStore.GetByID
// Soft-deleted articles are treated as absent.
// Returns store.ErrArticleNotFound if the article does not exist.
func (s *PostgresArticleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Article, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, title, text, user_id, language_id, original_article_id, created_at
		FROM articles
		WHERE id = $1 AND deleted_at IS NULL
	`

	var article domain.Article
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&article.ID,
		&article.Title,
		&article.Text,
		&article.UserID,
		&article.LanguageID,
		&article.OriginalArticleID,
		&article.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrArticleNotFound
		}
		log.Error("failed to get article by ID",
			slog.String("error", err.Error()),
			slog.String("article_id", id.String()))
		return nil, MapError(err)
	}

	return &article, nil
}

// Create implements store.ArticleStore.Create
// Returns store.ErrInvalidEntity if the owning user, language, or source
// article does not exist.
func (s *PostgresArticleStore) Create(ctx context.Context, article *domain.Article) error {
	log := logger.FromContext(ctx)

	if err := article.Validate(); err != nil {
		log.Warn("article validation failed during create",
			slog.String("error", err.Error()),
			slog.String("article_id", article.ID.String()))
		return err
	}

	query := `
		INSERT INTO articles (id, title, text, user_id, language_id, original_article_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		article.ID,
		article.Title,
		article.Text,
		article.UserID,
		article.LanguageID,
		article.OriginalArticleID,
		article.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create article",
			slog.String("error", err.Error()),
			slog.String("article_id", article.ID.String()),
			slog.String("user_id", article.UserID.String()))
		return MapError(err)
	}

	log.Debug("article created",
		slog.String("article_id", article.ID.String()),
		slog.Bool("is_translation", article.IsTranslation()))
	return nil
}

// WithTx implements store.ArticleStore.WithTx
func (s *PostgresArticleStore) WithTx(tx *sql.Tx) store.ArticleStore {
	return &PostgresArticleStore{db: tx}
}
