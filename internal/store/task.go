package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/avetrov/babel-api/internal/domain"
)

// TaskStore defines the interface for translation task persistence.
type TaskStore interface {
	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TranslationTask, error)

	// Create saves a new task to the store.
	// Returns validation errors from the domain task if data is invalid.
	Create(ctx context.Context, task *domain.TranslationTask) error

	// MarkStarted transitions the task into the started state. The update is
	// persisted immediately so a crash mid-processing leaves a visible
	// started task for reconciliation. Restarting an already started task
	// succeeds, so a redelivered message can resume it.
	// Returns ErrTaskNotFound if the task does not exist, or
	// domain.ErrTaskTerminal if it already finished.
	MarkStarted(ctx context.Context, id uuid.UUID) error

	// MarkCompleted transitions the task into the completed state, recording
	// the total token cost and the produced translated article in the same
	// statement. Returns ErrTaskNotFound if the task does not exist.
	MarkCompleted(ctx context.Context, id uuid.UUID, cost int, translatedArticleID uuid.UUID) error

	// MarkFailed transitions the task into the failed state with structured
	// failure data. Returns ErrTaskNotFound if the task does not exist.
	MarkFailed(ctx context.Context, id uuid.UUID, failure domain.TaskFailure) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}
