// Package service implements withdrawal submission and review.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	notificationsvc "github.com/propdesk/backoffice/internal/domain/notification/service"
	profilerepo "github.com/propdesk/backoffice/internal/domain/profile/repository"
	"github.com/propdesk/backoffice/internal/domain/withdrawal/repository"
	"github.com/propdesk/backoffice/pkg/money"
)

var (
	// ErrInvalidAmount is returned for zero or negative amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrNoProfile is returned when the caller has no profile.
	ErrNoProfile = errors.New("no profile for user")

	// ErrAlreadyReviewed is returned when reviewing a non-pending request.
	ErrAlreadyReviewed = errors.New("request already reviewed")
)

// NotificationDispatcher records an in-app notification for a recipient.
type NotificationDispatcher interface {
	Notify(ctx context.Context, notificationType, message string, senderID, recipientID uuid.UUID) error
}

// Service handles withdrawal requests. Submissions fan a notification out to
// every admin; reviews notify the requesting trader.
type Service struct {
	withdrawals repository.WithdrawalRepository
	profiles    profilerepo.ProfileRepository
	notifier    NotificationDispatcher
	logger      *slog.Logger
}

// NewService creates a new withdrawal service
func NewService(withdrawals repository.WithdrawalRepository, profiles profilerepo.ProfileRepository, notifier NotificationDispatcher, logger *slog.Logger) *Service {
	return &Service{
		withdrawals: withdrawals,
		profiles:    profiles,
		notifier:    notifier,
		logger:      logger,
	}
}

// Create submits a withdrawal request for the caller's profile.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reason string) (*repository.WithdrawalRequest, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, profilerepo.ErrNotFound) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, err
	}

	req := &repository.WithdrawalRequest{
		ProfileID: profile.ID,
		Amount:    amount,
		Reason:    reason,
	}
	if err := s.withdrawals.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal requested",
		slog.String("request_id", req.ID.String()),
		slog.String("amount", amount.StringFixed(2)),
	)

	display := money.NewFromDecimal(amount, money.USD).Display()
	message := fmt.Sprintf("New withdrawal request of %s submitted by %s.", display, profile.FullName)

	admins, err := s.profiles.ListByRole(ctx, profilerepo.RoleAdmin)
	if err != nil {
		s.logger.Warn("failed to list admins for notification", slog.Any("error", err))
		return req, nil
	}
	for _, admin := range admins {
		if err := s.notifier.Notify(ctx, notificationsvc.TypeWithdrawalRequest, message, userID, admin.UserID); err != nil {
			s.logger.Warn("failed to notify admin",
				slog.String("admin_id", admin.UserID.String()),
				slog.Any("error", err),
			)
		}
	}

	return req, nil
}

// List returns requests visible to an admin, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string) ([]*repository.WithdrawalRequest, error) {
	return s.withdrawals.List(ctx, status)
}

// ListForUser returns the caller's own requests.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*repository.WithdrawalRequest, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, profilerepo.ErrNotFound) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, err
	}
	return s.withdrawals.ListByProfile(ctx, profile.ID)
}

// Review approves or rejects a pending request. An approval may carry an
// adjusted amount; the requesting trader is notified either way.
func (s *Service) Review(ctx context.Context, reviewerID, requestID uuid.UUID, approve bool, adjustedAmount *decimal.Decimal) (*repository.WithdrawalRequest, error) {
	req, err := s.withdrawals.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != repository.StatusPending {
		return nil, ErrAlreadyReviewed
	}

	if approve {
		req.Status = repository.StatusApproved
		if adjustedAmount != nil {
			if !adjustedAmount.IsPositive() {
				return nil, ErrInvalidAmount
			}
			req.Amount = *adjustedAmount
		}
	} else {
		req.Status = repository.StatusRejected
	}

	if err := s.withdrawals.Review(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal reviewed",
		slog.String("request_id", req.ID.String()),
		slog.String("status", req.Status),
	)

	profile, err := s.profiles.GetByID(ctx, req.ProfileID)
	if err != nil {
		s.logger.Warn("failed to resolve requester for notification", slog.Any("error", err))
		return req, nil
	}

	display := money.NewFromDecimal(req.Amount, money.USD).Display()
	message := fmt.Sprintf("Your withdrawal request of %s has been %s.", display, req.Status)
	if err := s.notifier.Notify(ctx, notificationsvc.TypeWithdrawalReviewed, message, reviewerID, profile.UserID); err != nil {
		s.logger.Warn("failed to notify trader", slog.Any("error", err))
	}

	return req, nil
}
