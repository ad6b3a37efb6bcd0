package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a translation task.
type TaskStatus string

// Possible task status values. A task is created in TaskStatusCreated by the
// requesting side, moves to TaskStatusStarted when a worker picks it up, and
// ends in exactly one of TaskStatusCompleted or TaskStatusFailed. The two
// terminal states are never left once entered.
const (
	TaskStatusCreated   TaskStatus = "created"
	TaskStatusStarted   TaskStatus = "started"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCompleted TaskStatus = "completed"
)

// FailureKind classifies why a translation task failed.
type FailureKind string

// Possible failure kinds, in order of specificity. The consumer uses the kind
// to choose the user-facing notification wording.
const (
	// FailureKindIntegrity means an entity the task references (article,
	// target language, model, prompt) is missing. Retrying cannot help
	// because the referenced data itself is absent.
	FailureKindIntegrity FailureKind = "integrity"

	// FailureKindProviderTimeout means the external translation provider
	// exhausted its retries or timed out.
	FailureKindProviderTimeout FailureKind = "provider_timeout"

	// FailureKindUnexpected covers every other error.
	FailureKindUnexpected FailureKind = "unexpected"
)

// Common validation errors for TranslationTask
var (
	ErrEmptyTaskID           = errors.New("task ID cannot be empty")
	ErrEmptyTaskArticleID    = errors.New("task article ID cannot be empty")
	ErrInvalidTaskStatus     = errors.New("invalid task status")
	ErrTaskTerminal          = errors.New("task is already in a terminal state")
	ErrTaskCostWithoutResult = errors.New("task cost and translated article ID must be set together")
)

// TaskFailure carries structured data about a failed task. It is persisted
// alongside the task so operators can distinguish integrity problems from
// provider outages without digging through logs.
type TaskFailure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// TranslationTask represents one request to translate one article into one
// target language using one model/prompt pair.
//
// Invariant: Cost and TranslatedArticleID are set together, exactly once,
// only on the transition into TaskStatusCompleted.
type TranslationTask struct {
	ID                  uuid.UUID    `json:"id"`
	ArticleID           uuid.UUID    `json:"article_id"`
	TargetLanguageID    int          `json:"target_language_id"`
	PromptID            int          `json:"prompt_id"`
	ModelID             int          `json:"model_id"`
	Status              TaskStatus   `json:"status"`
	Cost                *int         `json:"cost,omitempty"`
	Failure             *TaskFailure `json:"failure,omitempty"`
	TranslatedArticleID *uuid.UUID   `json:"translated_article_id,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
}

// NewTranslationTask creates a task in the created state for the given
// article, target language, model, and prompt.
// Returns an error if validation fails.
func NewTranslationTask(articleID uuid.UUID, targetLanguageID, modelID, promptID int) (*TranslationTask, error) {
	task := &TranslationTask{
		ID:               uuid.New(),
		ArticleID:        articleID,
		TargetLanguageID: targetLanguageID,
		PromptID:         promptID,
		ModelID:          modelID,
		Status:           TaskStatusCreated,
		CreatedAt:        time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the TranslationTask has valid data.
// Returns an error if any field fails validation.
func (t *TranslationTask) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.ArticleID == uuid.Nil {
		return ErrEmptyTaskArticleID
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	// cost and translated article reference travel together
	if (t.Cost == nil) != (t.TranslatedArticleID == nil) {
		return ErrTaskCostWithoutResult
	}

	return nil
}

// IsTerminal reports whether the task has reached a final state.
func (t *TranslationTask) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// Start transitions the task into the started state. Starting an already
// started task is a no-op, so a worker picking up a redelivered message can
// resume it; terminal tasks are never revisited.
func (t *TranslationTask) Start() error {
	if t.IsTerminal() {
		return ErrTaskTerminal
	}

	t.Status = TaskStatusStarted
	return nil
}

// Complete transitions the task into the completed state, recording the
// total token cost and the produced translated article.
func (t *TranslationTask) Complete(cost int, translatedArticleID uuid.UUID) error {
	if t.IsTerminal() {
		return ErrTaskTerminal
	}

	t.Status = TaskStatusCompleted
	t.Cost = &cost
	t.TranslatedArticleID = &translatedArticleID
	t.Failure = nil
	return nil
}

// Fail transitions the task into the failed state with structured failure
// data. Cost and translated article reference remain unset.
func (t *TranslationTask) Fail(kind FailureKind, message string) error {
	if t.IsTerminal() {
		return ErrTaskTerminal
	}

	t.Status = TaskStatusFailed
	t.Failure = &TaskFailure{Kind: kind, Message: message}
	return nil
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusCreated, TaskStatusStarted, TaskStatusFailed, TaskStatusCompleted:
		return true
	default:
		return false
	}
}
