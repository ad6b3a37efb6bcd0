// Package notify persists user notifications and fans them out to delivery
// publishers. Persistence is the source of truth; publishers are live
// channels (a WebSocket gateway, a mail queue bridge) layered on top.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/avetrov/babel-api/internal/domain"
	"github.com/avetrov/babel-api/internal/platform/logger"
	"github.com/avetrov/babel-api/internal/store"
)

// Publisher delivers an already persisted notification over a live channel.
type Publisher interface {
	// Publish pushes the notification to the user. Returns an error if the
	// channel rejected it; the service logs and moves on.
	Publish(ctx context.Context, notification *domain.Notification) error
}

// Service creates notifications and pushes them to registered publishers.
type Service struct {
	notifications store.NotificationStore

	mu         sync.RWMutex
	publishers []Publisher
}

// NewService creates a notification Service over the given store.
func NewService(notifications store.NotificationStore) *Service {
	return &Service{notifications: notifications}
}

// RegisterPublisher adds a delivery publisher. Registration happens during
// process wiring; publishers are never removed.
func (s *Service) RegisterPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishers = append(s.publishers, p)
}

// Send persists a notification for the user and fans it out to every
// registered publisher. Publisher failures are logged and do not fail the
// send; persistence failures do.
func (s *Service) Send(ctx context.Context, userID uuid.UUID, title, text string, nType domain.NotificationType) error {
	notification, err := domain.NewNotification(userID, title, text, nType)
	if err != nil {
		return fmt.Errorf("building notification: %w", err)
	}

	if err := s.notifications.Create(ctx, notification); err != nil {
		return fmt.Errorf("saving notification: %w", err)
	}

	s.mu.RLock()
	publishers := make([]Publisher, len(s.publishers))
	copy(publishers, s.publishers)
	s.mu.RUnlock()

	log := logger.FromContext(ctx)
	for i, p := range publishers {
		if err := p.Publish(ctx, notification); err != nil {
			log.Error("notification publisher failed",
				slog.Int("publisher_index", i),
				slog.String("notification_id", notification.ID.String()),
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()))
		}
	}

	return nil
}
