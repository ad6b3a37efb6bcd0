package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avetrov/babel-api/internal/domain"
	"github.com/avetrov/babel-api/internal/platform/logger"
	"github.com/avetrov/babel-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db store.DBTX
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. The database connection or transaction is initialized
// and managed by the caller.
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresTaskStore{db: db}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TranslationTask, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, article_id, target_language_id, prompt_id, model_id,
		       status, cost, failure, translated_article_id, created_at
		FROM translation_tasks
		WHERE id = $1
	`

	var (
		task        domain.TranslationTask
		status      string
		failureJSON []byte
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.ArticleID,
		&task.TargetLanguageID,
		&task.PromptID,
		&task.ModelID,
		&status,
		&task.Cost,
		&failureJSON,
		&task.TranslatedArticleID,
		&task.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	task.Status = domain.TaskStatus(status)
	if len(failureJSON) > 0 {
		var failure domain.TaskFailure
		if err := json.Unmarshal(failureJSON, &failure); err != nil {
			return nil, fmt.Errorf("failed to decode task failure data: %w", err)
		}
		task.Failure = &failure
	}

	return &task, nil
}

// Create implements store.TaskStore.Create
// Returns store.ErrInvalidEntity if a referenced row does not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.TranslationTask) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO translation_tasks
			(id, article_id, target_language_id, prompt_id, model_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.ArticleID,
		task.TargetLanguageID,
		task.PromptID,
		task.ModelID,
		task.Status,
		task.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("article_id", task.ArticleID.String()))
	return nil
}

// MarkStarted implements store.TaskStore.MarkStarted
// Starting an already started task succeeds, so a worker can resume a task
// whose message was redelivered after a crash mid-processing. An attempt on
// a terminal task returns domain.ErrTaskTerminal.
func (s *PostgresTaskStore) MarkStarted(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE translation_tasks
		SET status = $1
		WHERE id = $2 AND status IN ($3, $4)
	`
	result, err := s.db.ExecContext(ctx, query,
		domain.TaskStatusStarted, id, domain.TaskStatusCreated, domain.TaskStatusStarted)
	if err != nil {
		return MapError(err)
	}
	return s.checkTransition(ctx, result, id)
}

// MarkCompleted implements store.TaskStore.MarkCompleted
// Cost and the translated article reference are written together with the
// status so a completed task is never missing its result.
func (s *PostgresTaskStore) MarkCompleted(ctx context.Context, id uuid.UUID, cost int, translatedArticleID uuid.UUID) error {
	query := `
		UPDATE translation_tasks
		SET status = $1, cost = $2, translated_article_id = $3
		WHERE id = $4 AND status IN ($5, $6)
	`
	result, err := s.db.ExecContext(ctx, query,
		domain.TaskStatusCompleted, cost, translatedArticleID,
		id, domain.TaskStatusCreated, domain.TaskStatusStarted)
	if err != nil {
		return MapError(err)
	}
	return s.checkTransition(ctx, result, id)
}

// MarkFailed implements store.TaskStore.MarkFailed
func (s *PostgresTaskStore) MarkFailed(ctx context.Context, id uuid.UUID, failure domain.TaskFailure) error {
	failureJSON, err := json.Marshal(failure)
	if err != nil {
		return fmt.Errorf("failed to encode task failure data: %w", err)
	}

	query := `
		UPDATE translation_tasks
		SET status = $1, failure = $2
		WHERE id = $3 AND status IN ($4, $5)
	`
	result, err := s.db.ExecContext(ctx, query,
		domain.TaskStatusFailed, failureJSON,
		id, domain.TaskStatusCreated, domain.TaskStatusStarted)
	if err != nil {
		return MapError(err)
	}
	return s.checkTransition(ctx, result, id)
}

// checkTransition distinguishes a missing task from an illegal state
// transition when a guarded UPDATE touched no rows.
func (s *PostgresTaskStore) checkTransition(ctx context.Context, result sql.Result, id uuid.UUID) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM translation_tasks WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return MapError(err)
	}
	if !exists {
		return store.ErrTaskNotFound
	}
	return domain.ErrTaskTerminal
}

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx}
}
