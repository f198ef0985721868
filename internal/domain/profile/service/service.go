// Package service implements profile directory and onboarding review logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	notificationsvc "github.com/propdesk/backoffice/internal/domain/notification/service"
	"github.com/propdesk/backoffice/internal/domain/profile/repository"
)

var (
	// ErrAlreadyReviewed is returned when reviewing a non-pending request.
	ErrAlreadyReviewed = errors.New("request already reviewed")

	// ErrMissingAllocation is returned when an approval lacks the share or
	// account number.
	ErrMissingAllocation = errors.New("share and account number are required to approve")
)

// NotificationDispatcher records an in-app notification for a recipient.
type NotificationDispatcher interface {
	Notify(ctx context.Context, notificationType, message string, senderID, recipientID uuid.UUID) error
}

// Service handles the profile directory and onboarding reviews.
type Service struct {
	profiles repository.ProfileRepository
	notifier NotificationDispatcher
	logger   *slog.Logger
}

// NewService creates a new profile service
func NewService(profiles repository.ProfileRepository, notifier NotificationDispatcher, logger *slog.Logger) *Service {
	return &Service{
		profiles: profiles,
		notifier: notifier,
		logger:   logger,
	}
}

// Get returns the profile owned by a user.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*repository.Profile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

// List returns every profile.
func (s *Service) List(ctx context.Context) ([]*repository.Profile, error) {
	return s.profiles.List(ctx)
}

// Search returns profiles whose full name fuzzily matches the query, best
// matches first. An empty query returns everything.
func (s *Service) Search(ctx context.Context, query string) ([]*repository.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return profiles, nil
	}

	type ranked struct {
		profile *repository.Profile
		rank    int
	}
	var matches []ranked
	for _, p := range profiles {
		rank := fuzzy.RankMatchNormalizedFold(query, p.FullName)
		if rank < 0 {
			continue
		}
		matches = append(matches, ranked{profile: p, rank: rank})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].rank < matches[j].rank })

	out := make([]*repository.Profile, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.profile)
	}
	return out, nil
}

// SubmitOnboarding records a pending onboarding request for the caller.
func (s *Service) SubmitOnboarding(ctx context.Context, userID uuid.UUID) (*repository.OnboardingRequest, error) {
	req := &repository.OnboardingRequest{UserID: userID}
	if err := s.profiles.CreateOnboardingRequest(ctx, req); err != nil {
		return nil, err
	}
	s.logger.Info("onboarding request submitted", slog.String("request_id", req.ID.String()))
	return req, nil
}

// ListOnboarding returns onboarding requests, optionally filtered by status.
func (s *Service) ListOnboarding(ctx context.Context, status string) ([]*repository.OnboardingRequest, error) {
	return s.profiles.ListOnboardingRequests(ctx, status)
}

// ReviewOnboarding approves or denies a pending request. Approval assigns
// the trader's profit share and live account number; the trader is notified
// either way.
func (s *Service) ReviewOnboarding(ctx context.Context, reviewerID, requestID uuid.UUID, approve bool, share *float64, accountNumber *string) (*repository.OnboardingRequest, error) {
	req, err := s.profiles.GetOnboardingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != repository.StatusPending {
		return nil, ErrAlreadyReviewed
	}

	var message string
	if approve {
		if share == nil || accountNumber == nil || *accountNumber == "" {
			return nil, ErrMissingAllocation
		}
		req.Status = repository.StatusApproved
		req.Share = share
		req.AccountNumber = accountNumber

		if err := s.profiles.SetAllocation(ctx, req.UserID, share, accountNumber); err != nil {
			return nil, fmt.Errorf("failed to assign allocation: %w", err)
		}
		message = fmt.Sprintf("Your onboarding request has been approved. Account %s is now active.", *accountNumber)
	} else {
		req.Status = repository.StatusDenied
		message = "Your onboarding request has been denied."
	}

	if err := s.profiles.ReviewOnboardingRequest(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("onboarding reviewed",
		slog.String("request_id", req.ID.String()),
		slog.String("status", req.Status),
	)

	if err := s.notifier.Notify(ctx, notificationsvc.TypeOnboardingReviewed, message, reviewerID, req.UserID); err != nil {
		s.logger.Warn("failed to notify trader", slog.Any("error", err))
	}

	return req, nil
}
