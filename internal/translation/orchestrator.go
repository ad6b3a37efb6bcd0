package translation

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/avetrov/babel-api/internal/domain"
	"github.com/avetrov/babel-api/internal/platform/logger"
	"github.com/avetrov/babel-api/internal/redact"
	"github.com/avetrov/babel-api/internal/store"
)

// TextTranslator translates a full text. Implemented by Translator; an
// interface here so orchestrator tests can stub the provider fan-out.
type TextTranslator interface {
	Translate(ctx context.Context, text string, sourceLang *domain.Language,
		targetLang domain.Language, model domain.AIModel, prompt domain.StylePrompt) (Result, error)
}

// Billing adjusts a user's balance inside a caller-owned transaction,
// pairing the balance change with a ledger entry.
type Billing interface {
	AdjustBalanceTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID, delta int, cause domain.BalanceCause) error
}

// Notifier delivers a user-facing notification. Delivery is best effort;
// the orchestrator logs and swallows Notifier errors.
type Notifier interface {
	Send(ctx context.Context, userID uuid.UUID, title, text string, nType domain.NotificationType) error
}

// User-facing notification wording per outcome.
const (
	successTitle = "Translation finished"
	failureTitle = "Translation failed"

	timeoutMessage    = "The translation service is not responding. Please try again later"
	unexpectedMessage = "Server error"
)

// Orchestrator drives one translation task from queue delivery to terminal
// state: resolve referenced entities, translate, persist results atomically,
// and notify the owner.
type Orchestrator struct {
	tasks      store.TaskStore
	articles   store.ArticleStore
	lookups    store.LookupStore
	translator TextTranslator
	billing    Billing
	notifier   Notifier

	// runInTx wraps store.RunInTransaction over the wired database.
	// Overridden in tests to run the transactional step without a database.
	runInTx func(ctx context.Context, fn store.TxFn) error
}

// NewOrchestrator creates an Orchestrator over the given stores and services.
func NewOrchestrator(
	db *sql.DB,
	tasks store.TaskStore,
	articles store.ArticleStore,
	lookups store.LookupStore,
	translator TextTranslator,
	billing Billing,
	notifier Notifier,
) *Orchestrator {
	return &Orchestrator{
		tasks:      tasks,
		articles:   articles,
		lookups:    lookups,
		translator: translator,
		billing:    billing,
		notifier:   notifier,
		runInTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
	}
}

// Process handles one delivered task. Business failures are recorded on the
// task itself and reported to the owner; the returned error exists for the
// consumer's logging only and never signals a redelivery.
func (o *Orchestrator) Process(ctx context.Context, taskID uuid.UUID) error {
	log := logger.FromContext(ctx).With(slog.String("task_id", taskID.String()))
	ctx = logger.WithLogger(ctx, log)

	task, err := o.tasks.GetByID(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			// Nothing to mark failed; the row the message points at is gone.
			log.Error("task not found, dropping message")
			return fmt.Errorf("%w: task %s: %v", ErrIntegrity, taskID, err)
		}
		log.Error("failed to load task", slog.String("error", err.Error()))
		return fmt.Errorf("loading task %s: %w", taskID, err)
	}

	if task.IsTerminal() {
		// Redelivered message for an already finished task.
		log.Warn("task already in terminal state, skipping",
			slog.String("status", string(task.Status)))
		return nil
	}

	refs, err := o.resolveReferences(ctx, task)
	if err != nil {
		// refs.article is set when the article loaded before a later
		// reference failed, so the owner still hears about the failure.
		return o.failTask(ctx, task, refs.article, err)
	}
	article := refs.article

	if err := o.tasks.MarkStarted(ctx, task.ID); err != nil {
		log.Error("failed to mark task started", slog.String("error", err.Error()))
		return o.failTask(ctx, task, article, fmt.Errorf("marking task started: %w", err))
	}

	log.Info("translating article",
		slog.String("article_id", article.ID.String()),
		slog.String("target_language", refs.targetLang.ISOCode),
		slog.String("model", refs.model.Name))

	var titleResult, bodyResult Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		titleResult, err = o.translator.Translate(gctx, article.Title,
			refs.sourceLang, refs.targetLang, refs.model, refs.prompt)
		if err != nil {
			return fmt.Errorf("translating title: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		bodyResult, err = o.translator.Translate(gctx, article.Text,
			refs.sourceLang, refs.targetLang, refs.model, refs.prompt)
		if err != nil {
			return fmt.Errorf("translating text: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return o.failTask(ctx, task, article, err)
	}

	translated, err := domain.NewTranslatedArticle(article, refs.targetLang.ID,
		titleResult.Text, bodyResult.Text)
	if err != nil {
		return o.failTask(ctx, task, article, fmt.Errorf("building translated article: %w", err))
	}

	// Floor at one token: a completed translation is never free, and the
	// ledger rejects zero-amount entries, so a provider omitting usage data
	// must not leave the completion without its paired ledger entry.
	cost := titleResult.TokensUsed + bodyResult.TokensUsed
	if cost < 1 {
		cost = 1
	}

	err = o.runInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := o.articles.WithTx(tx).Create(ctx, translated); err != nil {
			return fmt.Errorf("creating translated article: %w", err)
		}
		if err := o.tasks.WithTx(tx).MarkCompleted(ctx, task.ID, cost, translated.ID); err != nil {
			return fmt.Errorf("completing task: %w", err)
		}
		if err := o.billing.AdjustBalanceTx(ctx, tx, article.UserID, -cost, domain.BalanceCauseTranslation); err != nil {
			return fmt.Errorf("charging balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return o.failTask(ctx, task, article, err)
	}

	log.Info("task completed",
		slog.Int("cost", cost),
		slog.String("translated_article_id", translated.ID.String()))

	o.notify(ctx, article.UserID, successTitle,
		fmt.Sprintf("Article %q was successfully translated into %s", article.Title, refs.targetLang.Name),
		domain.NotificationTypeSuccess)

	return nil
}

// taskReferences holds every entity a task points at, resolved up front so
// integrity failures surface before any provider spend.
type taskReferences struct {
	article    *domain.Article
	sourceLang *domain.Language
	targetLang domain.Language
	model      domain.AIModel
	prompt     domain.StylePrompt
}

// resolveReferences loads the entities the task references. It always returns
// a non-nil taskReferences: on error the struct carries whatever resolved
// before the failure, in particular the article whose owner must be notified.
func (o *Orchestrator) resolveReferences(ctx context.Context, task *domain.TranslationTask) (*taskReferences, error) {
	refs := &taskReferences{}

	article, err := o.articles.GetByID(ctx, task.ArticleID)
	if err != nil {
		return refs, integrityOr(err, "article %s", task.ArticleID)
	}
	refs.article = article

	if article.LanguageID != nil {
		sourceLang, err := o.lookups.GetLanguageByID(ctx, *article.LanguageID)
		if err != nil {
			if !store.IsNotFoundError(err) {
				return refs, fmt.Errorf("loading source language %d: %w", *article.LanguageID, err)
			}
			// A stale language reference does not block the translation;
			// the prompt falls back to source-language detection.
			logger.FromContext(ctx).Warn("source language not found, using detection",
				slog.Int("language_id", *article.LanguageID))
		} else {
			refs.sourceLang = sourceLang
		}
	}

	targetLang, err := o.lookups.GetLanguageByID(ctx, task.TargetLanguageID)
	if err != nil {
		return refs, integrityOr(err, "target language %d", task.TargetLanguageID)
	}
	refs.targetLang = *targetLang

	model, err := o.lookups.GetModelByID(ctx, task.ModelID)
	if err != nil {
		return refs, integrityOr(err, "model %d", task.ModelID)
	}
	refs.model = *model

	prompt, err := o.lookups.GetPromptByID(ctx, task.PromptID)
	if err != nil {
		return refs, integrityOr(err, "prompt %d", task.PromptID)
	}
	refs.prompt = *prompt

	return refs, nil
}

// integrityOr maps a not-found error to ErrIntegrity and passes everything
// else through wrapped.
func integrityOr(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if store.IsNotFoundError(err) {
		return fmt.Errorf("%w: %s: %v", ErrIntegrity, what, err)
	}
	return fmt.Errorf("loading %s: %w", what, err)
}

// failTask records the failure on the task and tells the owner when one is
// known. Always returns cause so the consumer can log it.
func (o *Orchestrator) failTask(ctx context.Context, task *domain.TranslationTask, article *domain.Article, cause error) error {
	log := logger.FromContext(ctx)
	kind := FailureKind(cause)

	log.Error("task failed",
		slog.String("kind", string(kind)),
		slog.String("error", redact.Error(cause)))

	failure := domain.TaskFailure{
		Kind:    kind,
		Message: redact.Error(cause),
	}
	if err := o.tasks.MarkFailed(ctx, task.ID, failure); err != nil {
		log.Error("failed to mark task failed", slog.String("error", err.Error()))
	}

	if article == nil {
		// Owner unknown; operators find the failure on the task row.
		return cause
	}

	o.notify(ctx, article.UserID, failureTitle, failureMessage(kind), domain.NotificationTypeError)
	return cause
}

func failureMessage(kind domain.FailureKind) string {
	switch kind {
	case domain.FailureKindProviderTimeout:
		return timeoutMessage
	case domain.FailureKindIntegrity, domain.FailureKindUnexpected:
		return unexpectedMessage
	default:
		return unexpectedMessage
	}
}

// notify sends best effort; delivery problems never change the task outcome.
func (o *Orchestrator) notify(ctx context.Context, userID uuid.UUID, title, text string, nType domain.NotificationType) {
	if err := o.notifier.Send(ctx, userID, title, text, nType); err != nil {
		logger.FromContext(ctx).Error("failed to send notification",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
	}
}
