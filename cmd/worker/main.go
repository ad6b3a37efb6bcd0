// Package main implements the translation worker: it consumes translation
// task messages from the queue, runs them through the configured language
// model provider, and persists the results.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/avetrov/babel-api/internal/config"
	"github.com/avetrov/babel-api/internal/notify"
	"github.com/avetrov/babel-api/internal/platform/gemini"
	"github.com/avetrov/babel-api/internal/platform/logger"
	"github.com/avetrov/babel-api/internal/platform/openai"
	"github.com/avetrov/babel-api/internal/platform/postgres"
	"github.com/avetrov/babel-api/internal/platform/rabbitmq"
	"github.com/avetrov/babel-api/internal/redact"
	"github.com/avetrov/babel-api/internal/service"
	"github.com/avetrov/babel-api/internal/translation"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("worker failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	rootLogger, err := logger.Setup(cfg.Worker)
	if err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, rootLogger)

	rootLogger.Info("translation worker starting",
		slog.String("queue", cfg.Broker.TranslationQueue),
		slog.String("log_level", cfg.Worker.LogLevel))

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if cfg.Worker.RunMigrations {
		rootLogger.Info("applying database migrations")
		if err := postgres.RunMigrations(ctx, db); err != nil {
			return err
		}
	}

	conn, err := amqp.Dial(cfg.Broker.URL)
	if err != nil {
		return fmt.Errorf("connecting to broker %s: %w", redact.String(cfg.Broker.URL), err)
	}
	defer func() { _ = conn.Close() }()

	orchestrator, err := buildOrchestrator(ctx, cfg, db)
	if err != nil {
		return err
	}

	consumer := rabbitmq.NewConsumer(conn, cfg.Broker.TranslationQueue,
		func(ctx context.Context, msg rabbitmq.TaskMessage) error {
			return orchestrator.Process(ctx, msg.TaskID)
		})

	err = consumer.Run(ctx)
	if errors.Is(err, context.Canceled) {
		rootLogger.Info("translation worker stopped")
		return nil
	}
	return err
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database %s: %w", redact.String(cfg.Database.URL), err)
	}

	return db, nil
}

func buildOrchestrator(ctx context.Context, cfg *config.Config, db *sql.DB) (*translation.Orchestrator, error) {
	tasks := postgres.NewPostgresTaskStore(db)
	articles := postgres.NewPostgresArticleStore(db)
	lookups := postgres.NewPostgresLookupStore(db)
	users := postgres.NewPostgresUserStore(db)
	ledger := postgres.NewPostgresLedgerStore(db)
	notifications := postgres.NewPostgresNotificationStore(db)

	registry := translation.NewRegistry()
	registry.Register("openai", openai.NewClient(openai.Config{
		BaseURL:        cfg.Provider.BaseURL,
		APIKey:         cfg.Provider.APIKey,
		MaxAttempts:    cfg.Provider.MaxAttempts,
		RetryBaseDelay: time.Duration(cfg.Provider.RetryBaseDelaySeconds) * time.Second,
		RetryMaxDelay:  time.Duration(cfg.Provider.RetryMaxDelaySeconds) * time.Second,
		RequestTimeout: time.Duration(cfg.Provider.RequestTimeoutSeconds) * time.Second,
	}))

	if cfg.Provider.GeminiAPIKey != "" {
		geminiClient, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:         cfg.Provider.GeminiAPIKey,
			MaxAttempts:    cfg.Provider.MaxAttempts,
			RetryBaseDelay: time.Duration(cfg.Provider.RetryBaseDelaySeconds) * time.Second,
			RetryMaxDelay:  time.Duration(cfg.Provider.RetryMaxDelaySeconds) * time.Second,
			RequestTimeout: time.Duration(cfg.Provider.RequestTimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		registry.Register("gemini", geminiClient)
	} else {
		slog.Debug("gemini API key not configured, provider not registered")
	}

	translator := translation.NewTranslator(registry, translation.TranslatorConfig{
		MaxWordsInText:      cfg.Translation.MaxWordsInText,
		MaxWordsInChunk:     cfg.Translation.MaxWordsInChunk,
		MaxConcurrentChunks: cfg.Translation.MaxConcurrentChunks,
	})

	billing := service.NewBillingService(db, users, ledger, cfg.Translation.ChargeTokens)
	notifier := notify.NewService(notifications)

	return translation.NewOrchestrator(db, tasks, articles, lookups, translator, billing, notifier), nil
}
