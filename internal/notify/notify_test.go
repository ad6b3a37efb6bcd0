package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetrov/babel-api/internal/domain"
)

type mockNotificationStore struct {
	created   []*domain.Notification
	createErr error
}

func (m *mockNotificationStore) Create(_ context.Context, n *domain.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, n)
	return nil
}

type mockPublisher struct {
	published []*domain.Notification
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, n *domain.Notification) error {
	m.published = append(m.published, n)
	return m.err
}

func TestSendPersistsAndPublishes(t *testing.T) {
	t.Parallel()

	notifications := &mockNotificationStore{}
	pub := &mockPublisher{}
	svc := NewService(notifications)
	svc.RegisterPublisher(pub)

	userID := uuid.New()
	err := svc.Send(context.Background(), userID, "Translation finished", "Done", domain.NotificationTypeSuccess)
	require.NoError(t, err)

	require.Len(t, notifications.created, 1)
	saved := notifications.created[0]
	assert.Equal(t, userID, saved.UserID)
	assert.Equal(t, "Translation finished", saved.Title)
	assert.Equal(t, domain.NotificationTypeSuccess, saved.Type)
	assert.False(t, saved.Read)

	require.Len(t, pub.published, 1)
	assert.Equal(t, saved, pub.published[0])
}

func TestSendWithoutPublishers(t *testing.T) {
	t.Parallel()

	notifications := &mockNotificationStore{}
	svc := NewService(notifications)

	err := svc.Send(context.Background(), uuid.New(), "Title", "Text", domain.NotificationTypeInfo)
	require.NoError(t, err)
	assert.Len(t, notifications.created, 1)
}

func TestSendPublisherErrorIsSwallowed(t *testing.T) {
	t.Parallel()

	notifications := &mockNotificationStore{}
	failing := &mockPublisher{err: errors.New("socket closed")}
	working := &mockPublisher{}
	svc := NewService(notifications)
	svc.RegisterPublisher(failing)
	svc.RegisterPublisher(working)

	err := svc.Send(context.Background(), uuid.New(), "Title", "Text", domain.NotificationTypeError)
	require.NoError(t, err)

	// Both publishers are attempted even though the first one failed.
	assert.Len(t, failing.published, 1)
	assert.Len(t, working.published, 1)
}

func TestSendPersistFailureIsReturned(t *testing.T) {
	t.Parallel()

	notifications := &mockNotificationStore{createErr: errors.New("db down")}
	pub := &mockPublisher{}
	svc := NewService(notifications)
	svc.RegisterPublisher(pub)

	err := svc.Send(context.Background(), uuid.New(), "Title", "Text", domain.NotificationTypeError)
	require.Error(t, err)
	assert.Empty(t, pub.published, "nothing is published when persistence fails")
}

func TestSendValidationFailure(t *testing.T) {
	t.Parallel()

	notifications := &mockNotificationStore{}
	svc := NewService(notifications)

	err := svc.Send(context.Background(), uuid.New(), "", "Text", domain.NotificationTypeInfo)
	require.Error(t, err)
	assert.Empty(t, notifications.created)
}
