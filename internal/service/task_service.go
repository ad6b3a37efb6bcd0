package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avetrov/babel-api/internal/domain"
	"github.com/avetrov/babel-api/internal/platform/logger"
	"github.com/avetrov/babel-api/internal/platform/rabbitmq"
	"github.com/avetrov/babel-api/internal/store"
	"github.com/avetrov/babel-api/internal/tokens"
)

// TaskPublisher enqueues task messages for the worker. Implemented by
// rabbitmq.Publisher.
type TaskPublisher interface {
	Publish(ctx context.Context, msg rabbitmq.TaskMessage) error
}

// TaskService is the enqueueing side of the pipeline: it estimates costs,
// creates translation tasks, and publishes them for workers to pick up.
type TaskService struct {
	tasks     store.TaskStore
	articles  store.ArticleStore
	lookups   store.LookupStore
	estimator *tokens.Estimator
	publisher TaskPublisher
}

// NewTaskService creates a TaskService over the given stores and publisher.
func NewTaskService(
	tasks store.TaskStore,
	articles store.ArticleStore,
	lookups store.LookupStore,
	estimator *tokens.Estimator,
	publisher TaskPublisher,
) *TaskService {
	return &TaskService{
		tasks:     tasks,
		articles:  articles,
		lookups:   lookups,
		estimator: estimator,
		publisher: publisher,
	}
}

// EstimateCost returns the advisory token cost of translating the article
// into the given number of target languages with the given model and prompt.
// The real cost is what the provider reports during processing; this figure
// exists so users can check their balance before enqueueing.
func (s *TaskService) EstimateCost(ctx context.Context, articleID uuid.UUID, modelID, promptID, languageCount int) (int, error) {
	article, err := s.articles.GetByID(ctx, articleID)
	if err != nil {
		return 0, fmt.Errorf("loading article %s: %w", articleID, err)
	}
	model, err := s.lookups.GetModelByID(ctx, modelID)
	if err != nil {
		return 0, fmt.Errorf("loading model %d: %w", modelID, err)
	}
	prompt, err := s.lookups.GetPromptByID(ctx, promptID)
	if err != nil {
		return 0, fmt.Errorf("loading prompt %d: %w", promptID, err)
	}

	text := article.Title + " " + article.Text
	return s.estimator.EstimateTaskCost(text, prompt.Text, *model, languageCount), nil
}

// EnqueueTranslations creates one task per target language and publishes a
// message for each. Tasks are created first so a crash between create and
// publish leaves reconcilable created tasks rather than unexplained messages.
func (s *TaskService) EnqueueTranslations(ctx context.Context, articleID uuid.UUID, targetLanguageIDs []int, modelID, promptID int) ([]*domain.TranslationTask, error) {
	log := logger.FromContext(ctx)

	if len(targetLanguageIDs) == 0 {
		return nil, fmt.Errorf("no target languages given")
	}

	if _, err := s.articles.GetByID(ctx, articleID); err != nil {
		return nil, fmt.Errorf("loading article %s: %w", articleID, err)
	}
	for _, langID := range targetLanguageIDs {
		if _, err := s.lookups.GetLanguageByID(ctx, langID); err != nil {
			return nil, fmt.Errorf("loading target language %d: %w", langID, err)
		}
	}

	created := make([]*domain.TranslationTask, 0, len(targetLanguageIDs))
	for _, langID := range targetLanguageIDs {
		task, err := domain.NewTranslationTask(articleID, langID, modelID, promptID)
		if err != nil {
			return created, fmt.Errorf("building task for language %d: %w", langID, err)
		}
		if err := s.tasks.Create(ctx, task); err != nil {
			return created, fmt.Errorf("creating task for language %d: %w", langID, err)
		}
		if err := s.publisher.Publish(ctx, rabbitmq.TaskMessage{TaskID: task.ID}); err != nil {
			return created, fmt.Errorf("publishing task %s: %w", task.ID, err)
		}

		log.Info("translation task enqueued",
			slog.String("task_id", task.ID.String()),
			slog.String("article_id", articleID.String()),
			slog.Int("target_language_id", langID))
		created = append(created, task)
	}

	return created, nil
}
