package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetrov/babel-api/internal/domain"
	"github.com/avetrov/babel-api/internal/platform/rabbitmq"
	"github.com/avetrov/babel-api/internal/store"
	"github.com/avetrov/babel-api/internal/tokens"
)

type mockTaskStore struct {
	created   []*domain.TranslationTask
	createErr error
}

func (m *mockTaskStore) GetByID(_ context.Context, _ uuid.UUID) (*domain.TranslationTask, error) {
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskStore) Create(_ context.Context, task *domain.TranslationTask) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, task)
	return nil
}

func (m *mockTaskStore) MarkStarted(_ context.Context, _ uuid.UUID) error { return nil }

func (m *mockTaskStore) MarkCompleted(_ context.Context, _ uuid.UUID, _ int, _ uuid.UUID) error {
	return nil
}

func (m *mockTaskStore) MarkFailed(_ context.Context, _ uuid.UUID, _ domain.TaskFailure) error {
	return nil
}

func (m *mockTaskStore) WithTx(_ *sql.Tx) store.TaskStore { return m }

type mockArticleStore struct {
	articles map[uuid.UUID]*domain.Article
}

func (m *mockArticleStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Article, error) {
	article, ok := m.articles[id]
	if !ok {
		return nil, store.ErrArticleNotFound
	}
	return article, nil
}

func (m *mockArticleStore) Create(_ context.Context, article *domain.Article) error {
	m.articles[article.ID] = article
	return nil
}

func (m *mockArticleStore) WithTx(_ *sql.Tx) store.ArticleStore { return m }

type mockLookupStore struct {
	languages map[int]*domain.Language
	models    map[int]*domain.AIModel
	prompts   map[int]*domain.StylePrompt
}

func (m *mockLookupStore) GetLanguageByID(_ context.Context, id int) (*domain.Language, error) {
	lang, ok := m.languages[id]
	if !ok {
		return nil, store.ErrLanguageNotFound
	}
	return lang, nil
}

func (m *mockLookupStore) GetModelByID(_ context.Context, id int) (*domain.AIModel, error) {
	model, ok := m.models[id]
	if !ok {
		return nil, store.ErrModelNotFound
	}
	return model, nil
}

func (m *mockLookupStore) GetPromptByID(_ context.Context, id int) (*domain.StylePrompt, error) {
	prompt, ok := m.prompts[id]
	if !ok {
		return nil, store.ErrPromptNotFound
	}
	return prompt, nil
}

type mockPublisher struct {
	published []rabbitmq.TaskMessage
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, msg rabbitmq.TaskMessage) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

type taskServiceFixture struct {
	svc       *TaskService
	tasks     *mockTaskStore
	publisher *mockPublisher
	article   *domain.Article
}

func newTaskServiceFixture(t *testing.T) *taskServiceFixture {
	t.Helper()

	article := &domain.Article{
		ID:     uuid.New(),
		Title:  "On testing",
		Text:   "Short body.",
		UserID: uuid.New(),
	}
	tasks := &mockTaskStore{}
	publisher := &mockPublisher{}
	lookups := &mockLookupStore{
		languages: map[int]*domain.Language{
			2: {ID: 2, Name: "German", ISOCode: "DE"},
			3: {ID: 3, Name: "French", ISOCode: "FR"},
		},
		models: map[int]*domain.AIModel{
			10: {ID: 10, Name: "gpt-4o", ShowName: "GPT-4o", Provider: "openai", TokenMultiplier: 1.5},
		},
		prompts: map[int]*domain.StylePrompt{
			20: {ID: 20, Title: "Default", Text: "Translate to {{target_lang}}."},
		},
	}

	svc := NewTaskService(tasks,
		&mockArticleStore{articles: map[uuid.UUID]*domain.Article{article.ID: article}},
		lookups, tokens.NewEstimator(nil), publisher)

	return &taskServiceFixture{svc: svc, tasks: tasks, publisher: publisher, article: article}
}

func TestEnqueueTranslationsCreatesTaskPerLanguage(t *testing.T) {
	t.Parallel()

	f := newTaskServiceFixture(t)
	created, err := f.svc.EnqueueTranslations(context.Background(), f.article.ID, []int{2, 3}, 10, 20)
	require.NoError(t, err)

	require.Len(t, created, 2)
	assert.Equal(t, 2, created[0].TargetLanguageID)
	assert.Equal(t, 3, created[1].TargetLanguageID)
	for _, task := range created {
		assert.Equal(t, domain.TaskStatusCreated, task.Status)
		assert.Equal(t, f.article.ID, task.ArticleID)
	}

	require.Len(t, f.publisher.published, 2)
	assert.Equal(t, created[0].ID, f.publisher.published[0].TaskID)
	assert.Equal(t, created[1].ID, f.publisher.published[1].TaskID)
	assert.Zero(t, f.publisher.published[0].RetryCount)
}

func TestEnqueueTranslationsUnknownArticle(t *testing.T) {
	t.Parallel()

	f := newTaskServiceFixture(t)
	_, err := f.svc.EnqueueTranslations(context.Background(), uuid.New(), []int{2}, 10, 20)

	assert.ErrorIs(t, err, store.ErrArticleNotFound)
	assert.Empty(t, f.tasks.created)
	assert.Empty(t, f.publisher.published)
}

func TestEnqueueTranslationsUnknownLanguage(t *testing.T) {
	t.Parallel()

	f := newTaskServiceFixture(t)
	_, err := f.svc.EnqueueTranslations(context.Background(), f.article.ID, []int{99}, 10, 20)

	assert.ErrorIs(t, err, store.ErrLanguageNotFound)
	assert.Empty(t, f.tasks.created)
}

func TestEnqueueTranslationsEmptyLanguages(t *testing.T) {
	t.Parallel()

	f := newTaskServiceFixture(t)
	_, err := f.svc.EnqueueTranslations(context.Background(), f.article.ID, nil, 10, 20)
	assert.Error(t, err)
}

func TestEnqueueTranslationsPublishFailureStopsEarly(t *testing.T) {
	t.Parallel()

	f := newTaskServiceFixture(t)
	f.publisher.err = errors.New("broker gone")

	created, err := f.svc.EnqueueTranslations(context.Background(), f.article.ID, []int{2, 3}, 10, 20)
	require.Error(t, err)

	// The first task was persisted before the publish failed; callers get
	// the partial list back for reconciliation.
	assert.Empty(t, created)
	assert.Len(t, f.tasks.created, 1)
}

func TestEstimateCostScalesWithLanguages(t *testing.T) {
	t.Parallel()

	f := newTaskServiceFixture(t)

	one, err := f.svc.EstimateCost(context.Background(), f.article.ID, 10, 20, 1)
	require.NoError(t, err)
	three, err := f.svc.EstimateCost(context.Background(), f.article.ID, 10, 20, 3)
	require.NoError(t, err)

	assert.Positive(t, one)
	assert.Equal(t, one*3, three)
}

func TestEstimateCostUnknownModel(t *testing.T) {
	t.Parallel()

	f := newTaskServiceFixture(t)
	_, err := f.svc.EstimateCost(context.Background(), f.article.ID, 99, 20, 1)
	assert.ErrorIs(t, err, store.ErrModelNotFound)
}
