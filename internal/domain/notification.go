package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// NotificationType controls how the frontend renders a notification.
type NotificationType string

// Possible notification types.
const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

// Common validation errors for Notification
var (
	ErrEmptyNotificationID     = errors.New("notification ID cannot be empty")
	ErrEmptyNotificationUserID = errors.New("notification user ID cannot be empty")
	ErrEmptyNotificationTitle  = errors.New("notification title cannot be empty")
	ErrInvalidNotificationType = errors.New("invalid notification type")
)

// Notification is one message addressed to a user. The worker persists it
// and hands it to registered publishers; delivery to the user's open
// sessions is the gateway's concern.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Title     string           `json:"title"`
	Text      string           `json:"text"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewNotification creates an unread notification for the given user.
// Returns an error if validation fails.
func NewNotification(userID uuid.UUID, title, text string, nType NotificationType) (*Notification, error) {
	notification := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Text:      text,
		Type:      nType,
		CreatedAt: time.Now().UTC(),
	}

	if err := notification.Validate(); err != nil {
		return nil, err
	}

	return notification, nil
}

// Validate checks if the Notification has valid data.
func (n *Notification) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyNotificationID
	}

	if n.UserID == uuid.Nil {
		return ErrEmptyNotificationUserID
	}

	if n.Title == "" {
		return ErrEmptyNotificationTitle
	}

	if !isValidNotificationType(n.Type) {
		return ErrInvalidNotificationType
	}

	return nil
}

// isValidNotificationType checks if the given type is a valid NotificationType.
func isValidNotificationType(t NotificationType) bool {
	switch t {
	case NotificationTypeInfo, NotificationTypeSuccess, NotificationTypeWarning, NotificationTypeError:
		return true
	default:
		return false
	}
}
