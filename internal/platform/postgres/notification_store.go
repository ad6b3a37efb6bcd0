package postgres

import (
	"context"
	"log/slog"

	"github.com/avetrov/babel-api/internal/domain"
	"github.com/avetrov/babel-api/internal/platform/logger"
	"github.com/avetrov/babel-api/internal/store"
)

// PostgresNotificationStore implements the store.NotificationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNotificationStore struct {
	db store.DBTX
}

// NewPostgresNotificationStore creates a new PostgreSQL implementation of
// the NotificationStore interface.
func NewPostgresNotificationStore(db store.DBTX) *PostgresNotificationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresNotificationStore{db: db}
}

// Ensure PostgresNotificationStore implements store.NotificationStore interface
var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// Create implements store.NotificationStore.Create
// Returns store.ErrInvalidEntity if the referenced user does not exist.
func (s *PostgresNotificationStore) Create(ctx context.Context, notification *domain.Notification) error {
	log := logger.FromContext(ctx)

	if err := notification.Validate(); err != nil {
		log.Warn("notification validation failed during create",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()))
		return err
	}

	query := `
		INSERT INTO notifications (id, user_id, title, text, type, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		notification.ID,
		notification.UserID,
		notification.Title,
		notification.Text,
		notification.Type,
		notification.Read,
		notification.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()),
			slog.String("user_id", notification.UserID.String()))
		return MapError(err)
	}

	return nil
}
