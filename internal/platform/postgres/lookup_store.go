package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avetrov/babel-api/internal/domain"
	"github.com/avetrov/babel-api/internal/store"
)

// PostgresLookupStore implements the store.LookupStore interface. The rows
// it reads are small reference tables managed elsewhere, so it is read-only
// and carries no WithTx variant.
type PostgresLookupStore struct {
	db store.DBTX
}

// NewPostgresLookupStore creates a new PostgreSQL implementation of the
// LookupStore interface.
func NewPostgresLookupStore(db store.DBTX) *PostgresLookupStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresLookupStore{db: db}
}

// Ensure PostgresLookupStore implements store.LookupStore interface
var _ store.LookupStore = (*PostgresLookupStore)(nil)

// GetLanguageByID implements store.LookupStore.GetLanguageByID
// Returns store.ErrLanguageNotFound if the language does not exist.
func (s *PostgresLookupStore) GetLanguageByID(ctx context.Context, id int) (*domain.Language, error) {
	query := `SELECT id, name, iso_code FROM languages WHERE id = $1`

	var lang domain.Language
	err := s.db.QueryRowContext(ctx, query, id).Scan(&lang.ID, &lang.Name, &lang.ISOCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrLanguageNotFound
		}
		return nil, MapError(err)
	}
	return &lang, nil
}

// GetModelByID implements store.LookupStore.GetModelByID
// Returns store.ErrModelNotFound if the model does not exist.
func (s *PostgresLookupStore) GetModelByID(ctx context.Context, id int) (*domain.AIModel, error) {
	query := `SELECT id, show_name, name, provider, token_multiplier FROM ai_models WHERE id = $1`

	var model domain.AIModel
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&model.ID,
		&model.ShowName,
		&model.Name,
		&model.Provider,
		&model.TokenMultiplier,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrModelNotFound
		}
		return nil, MapError(err)
	}
	return &model, nil
}

// GetPromptByID implements store.LookupStore.GetPromptByID
// Returns store.ErrPromptNotFound if the prompt does not exist.
func (s *PostgresLookupStore) GetPromptByID(ctx context.Context, id int) (*domain.StylePrompt, error) {
	query := `SELECT id, title, text FROM style_prompts WHERE id = $1`

	var prompt domain.StylePrompt
	err := s.db.QueryRowContext(ctx, query, id).Scan(&prompt.ID, &prompt.Title, &prompt.Text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPromptNotFound
		}
		return nil, MapError(err)
	}
	return &prompt, nil
}
