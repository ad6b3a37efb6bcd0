package store

import (
	"context"

	"github.com/avetrov/babel-api/internal/domain"
)

// LookupStore defines read-only access to the reference data a translation
// task points at: languages, AI models, and style prompts. These rows are
// managed by the API layer; the worker only resolves them.
type LookupStore interface {
	// GetLanguageByID retrieves a language by its ID.
	// Returns ErrLanguageNotFound if the language does not exist.
	GetLanguageByID(ctx context.Context, id int) (*domain.Language, error)

	// GetModelByID retrieves an AI model by its ID.
	// Returns ErrModelNotFound if the model does not exist.
	GetModelByID(ctx context.Context, id int) (*domain.AIModel, error)

	// GetPromptByID retrieves a style prompt by its ID.
	// Returns ErrPromptNotFound if the prompt does not exist.
	GetPromptByID(ctx context.Context, id int) (*domain.StylePrompt, error)
}
