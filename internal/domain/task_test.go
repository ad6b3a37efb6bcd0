package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewTranslationTask(t *testing.T) {
	t.Parallel() // Enable parallel execution
	articleID := uuid.New()

	task, err := NewTranslationTask(articleID, 2, 3, 4)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if task.ArticleID != articleID {
		t.Errorf("Expected article ID %s, got %s", articleID, task.ArticleID)
	}

	if task.Status != TaskStatusCreated {
		t.Errorf("Expected status %s, got %s", TaskStatusCreated, task.Status)
	}

	if task.Cost != nil || task.TranslatedArticleID != nil {
		t.Error("Expected cost and translated article ID to be unset on a new task")
	}

	if task.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	// Test invalid article ID
	_, err = NewTranslationTask(uuid.Nil, 2, 3, 4)
	if err != ErrEmptyTaskArticleID {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskArticleID, err)
	}
}

func TestTranslationTaskTransitions(t *testing.T) {
	t.Parallel() // Enable parallel execution
	task, err := NewTranslationTask(uuid.New(), 2, 3, 4)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := task.Start(); err != nil {
		t.Fatalf("Expected no error starting task, got %v", err)
	}
	if task.Status != TaskStatusStarted {
		t.Errorf("Expected status %s, got %s", TaskStatusStarted, task.Status)
	}

	translatedID := uuid.New()
	if err := task.Complete(250, translatedID); err != nil {
		t.Fatalf("Expected no error completing task, got %v", err)
	}

	if task.Status != TaskStatusCompleted {
		t.Errorf("Expected status %s, got %s", TaskStatusCompleted, task.Status)
	}
	if task.Cost == nil || *task.Cost != 250 {
		t.Errorf("Expected cost 250, got %v", task.Cost)
	}
	if task.TranslatedArticleID == nil || *task.TranslatedArticleID != translatedID {
		t.Errorf("Expected translated article ID %s, got %v", translatedID, task.TranslatedArticleID)
	}
	if err := task.Validate(); err != nil {
		t.Errorf("Expected completed task to validate, got %v", err)
	}

	// Terminal states are never left
	if err := task.Fail(FailureKindUnexpected, "boom"); err != ErrTaskTerminal {
		t.Errorf("Expected error %v, got %v", ErrTaskTerminal, err)
	}
	if err := task.Start(); err != ErrTaskTerminal {
		t.Errorf("Expected error %v, got %v", ErrTaskTerminal, err)
	}
}

func TestTranslationTaskFail(t *testing.T) {
	t.Parallel() // Enable parallel execution
	task, err := NewTranslationTask(uuid.New(), 2, 3, 4)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := task.Start(); err != nil {
		t.Fatalf("Expected no error starting task, got %v", err)
	}

	if err := task.Fail(FailureKindProviderTimeout, "provider unavailable"); err != nil {
		t.Fatalf("Expected no error failing task, got %v", err)
	}

	if task.Status != TaskStatusFailed {
		t.Errorf("Expected status %s, got %s", TaskStatusFailed, task.Status)
	}
	if task.Failure == nil || task.Failure.Kind != FailureKindProviderTimeout {
		t.Errorf("Expected failure kind %s, got %v", FailureKindProviderTimeout, task.Failure)
	}
	if task.Cost != nil || task.TranslatedArticleID != nil {
		t.Error("Expected no cost or translated article on a failed task")
	}

	if err := task.Complete(10, uuid.New()); err != ErrTaskTerminal {
		t.Errorf("Expected error %v, got %v", ErrTaskTerminal, err)
	}
}

func TestTranslationTaskValidateCostPairing(t *testing.T) {
	t.Parallel() // Enable parallel execution
	task := TranslationTask{
		ID:        uuid.New(),
		ArticleID: uuid.New(),
		Status:    TaskStatusCompleted,
	}

	cost := 100
	task.Cost = &cost
	if err := task.Validate(); err != ErrTaskCostWithoutResult {
		t.Errorf("Expected error %v, got %v", ErrTaskCostWithoutResult, err)
	}

	translatedID := uuid.New()
	task.TranslatedArticleID = &translatedID
	if err := task.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
