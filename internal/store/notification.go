package store

import (
	"context"

	"github.com/avetrov/babel-api/internal/domain"
)

// NotificationStore defines the interface for notification persistence.
// The worker only ever creates notifications; listing and read-marking are
// handled by the API layer.
type NotificationStore interface {
	// Create saves a new notification.
	// Returns validation errors from the domain Notification if data is invalid.
	Create(ctx context.Context, notification *domain.Notification) error
}
