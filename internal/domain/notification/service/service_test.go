package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propdesk/backoffice/internal/domain/notification/repository"
)

type mockRepo struct {
	created   []*repository.Notification
	createErr error

	deletedCutoff time.Time
	deletedCount  int64

	markedRecipient uuid.UUID
	markedCount     int64
}

func (m *mockRepo) Create(ctx context.Context, n *repository.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	m.created = append(m.created, n)
	return nil
}

func (m *mockRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]*repository.Notification, error) {
	return m.created, nil
}

func (m *mockRepo) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	m.markedRecipient = recipientID
	return m.markedCount, nil
}

func (m *mockRepo) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.deletedCutoff = cutoff
	return m.deletedCount, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNotify(t *testing.T) {
	t.Run("records the notification", func(t *testing.T) {
		repo := &mockRepo{}
		svc := NewService(repo, testLogger())

		sender, recipient := uuid.New(), uuid.New()
		err := svc.Notify(context.Background(), TypePerformanceUpload, "Performance data has been uploaded for account 12345.", sender, recipient)
		require.NoError(t, err)

		require.Len(t, repo.created, 1)
		n := repo.created[0]
		assert.Equal(t, TypePerformanceUpload, n.Type)
		assert.Equal(t, sender, n.SenderID)
		assert.Equal(t, recipient, n.RecipientID)
		assert.False(t, n.Read)
	})

	t.Run("wraps repository failures", func(t *testing.T) {
		repo := &mockRepo{createErr: errors.New("connection lost")}
		svc := NewService(repo, testLogger())

		err := svc.Notify(context.Background(), TypeWithdrawalRequest, "msg", uuid.New(), uuid.New())
		assert.Error(t, err)
	})
}

func TestMarkAllRead(t *testing.T) {
	repo := &mockRepo{markedCount: 4}
	svc := NewService(repo, testLogger())

	recipient := uuid.New()
	updated, err := svc.MarkAllRead(context.Background(), recipient)
	require.NoError(t, err)

	assert.Equal(t, int64(4), updated)
	assert.Equal(t, recipient, repo.markedRecipient)
}

func TestCleanupExpired(t *testing.T) {
	repo := &mockRepo{deletedCount: 2}
	svc := NewService(repo, testLogger())

	require.NoError(t, svc.CleanupExpired(context.Background()))

	wantCutoff := time.Now().Add(-retentionWindow)
	assert.WithinDuration(t, wantCutoff, repo.deletedCutoff, time.Minute)
}
