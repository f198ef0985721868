// Package service implements notification delivery and retention.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/propdesk/backoffice/internal/domain/notification/repository"
)

// Notification types recorded by the portal.
const (
	TypePerformanceUpload  = "performance_upload"
	TypeOnboardingReviewed = "onboarding_reviewed"
	TypeWithdrawalRequest  = "withdrawal_request"
	TypeWithdrawalReviewed = "withdrawal_reviewed"
)

// retentionWindow is how long read notifications are kept before the
// cleanup job removes them.
const retentionWindow = 90 * 24 * time.Hour

// Service handles notification creation, listing, and cleanup.
type Service struct {
	repo   repository.NotificationRepository
	logger *slog.Logger
}

// NewService creates a new notification service
func NewService(repo repository.NotificationRepository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Notify records an in-app notification from sender to recipient.
func (s *Service) Notify(ctx context.Context, notificationType, message string, senderID, recipientID uuid.UUID) error {
	n := &repository.Notification{
		Type:        notificationType,
		Message:     message,
		SenderID:    senderID,
		RecipientID: recipientID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}

	s.logger.Info("notification delivered",
		slog.String("type", notificationType),
		slog.String("recipient_id", recipientID.String()),
	)
	return nil
}

// List returns the recipient's notifications, newest first.
func (s *Service) List(ctx context.Context, recipientID uuid.UUID, limit int) ([]*repository.Notification, error) {
	return s.repo.ListByRecipient(ctx, recipientID, limit)
}

// MarkAllRead flags every unread notification for the recipient as read and
// returns how many were updated.
func (s *Service) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, recipientID)
}

// CleanupExpired deletes read notifications older than the retention window.
// Wired into the background scheduler.
func (s *Service) CleanupExpired(ctx context.Context) error {
	cutoff := time.Now().Add(-retentionWindow)
	deleted, err := s.repo.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to clean up notifications: %w", err)
	}
	if deleted > 0 {
		s.logger.Info("expired notifications removed", slog.Int64("count", deleted))
	}
	return nil
}
