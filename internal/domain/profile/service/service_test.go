package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propdesk/backoffice/internal/domain/profile/repository"
)

// mockProfileRepo satisfies the full repository interface; only the methods
// the profile service touches are implemented.
type mockProfileRepo struct {
	repository.ProfileRepository

	profiles    []*repository.Profile
	requests    map[uuid.UUID]*repository.OnboardingRequest
	allocations map[uuid.UUID]struct {
		share         *float64
		accountNumber *string
	}
	reviewed []*repository.OnboardingRequest
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{
		requests: map[uuid.UUID]*repository.OnboardingRequest{},
		allocations: map[uuid.UUID]struct {
			share         *float64
			accountNumber *string
		}{},
	}
}

func (m *mockProfileRepo) List(ctx context.Context) ([]*repository.Profile, error) {
	return m.profiles, nil
}

func (m *mockProfileRepo) CreateOnboardingRequest(ctx context.Context, req *repository.OnboardingRequest) error {
	req.ID = uuid.New()
	req.Status = repository.StatusPending
	m.requests[req.ID] = req
	return nil
}

func (m *mockProfileRepo) GetOnboardingRequest(ctx context.Context, id uuid.UUID) (*repository.OnboardingRequest, error) {
	if req, ok := m.requests[id]; ok {
		return req, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockProfileRepo) ReviewOnboardingRequest(ctx context.Context, req *repository.OnboardingRequest) error {
	m.reviewed = append(m.reviewed, req)
	return nil
}

func (m *mockProfileRepo) SetAllocation(ctx context.Context, userID uuid.UUID, share *float64, accountNumber *string) error {
	m.allocations[userID] = struct {
		share         *float64
		accountNumber *string
	}{share, accountNumber}
	return nil
}

type sentNotification struct {
	notificationType string
	message          string
	recipientID      uuid.UUID
}

type mockNotifier struct {
	sent []sentNotification
}

func (m *mockNotifier) Notify(ctx context.Context, notificationType, message string, senderID, recipientID uuid.UUID) error {
	m.sent = append(m.sent, sentNotification{notificationType, message, recipientID})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestSearch(t *testing.T) {
	repo := newMockProfileRepo()
	repo.profiles = []*repository.Profile{
		{ID: uuid.New(), FullName: "Jordan Reyes"},
		{ID: uuid.New(), FullName: "Dana Whitfield"},
		{ID: uuid.New(), FullName: "Jordana Smith"},
	}
	svc := NewService(repo, &mockNotifier{}, testLogger())

	t.Run("empty query returns everything", func(t *testing.T) {
		out, err := svc.Search(context.Background(), "")
		require.NoError(t, err)
		assert.Len(t, out, 3)
	})

	t.Run("fuzzy matches are ranked", func(t *testing.T) {
		out, err := svc.Search(context.Background(), "jordan")
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "Jordan Reyes", out[0].FullName)
		assert.Equal(t, "Jordana Smith", out[1].FullName)
	})

	t.Run("no match yields empty result", func(t *testing.T) {
		out, err := svc.Search(context.Background(), "zzzz")
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestReviewOnboarding(t *testing.T) {
	reviewerID := uuid.New()
	traderID := uuid.New()

	share := 0.75
	accountNumber := "12345"

	submit := func(t *testing.T) (*Service, *mockProfileRepo, *mockNotifier, *repository.OnboardingRequest) {
		repo := newMockProfileRepo()
		notifier := &mockNotifier{}
		svc := NewService(repo, notifier, testLogger())

		req, err := svc.SubmitOnboarding(context.Background(), traderID)
		require.NoError(t, err)
		return svc, repo, notifier, req
	}

	t.Run("approval assigns the allocation and notifies", func(t *testing.T) {
		svc, repo, notifier, req := submit(t)

		reviewed, err := svc.ReviewOnboarding(context.Background(), reviewerID, req.ID, true, &share, &accountNumber)
		require.NoError(t, err)

		assert.Equal(t, repository.StatusApproved, reviewed.Status)
		assert.Equal(t, &share, reviewed.Share)

		alloc, ok := repo.allocations[traderID]
		require.True(t, ok)
		assert.Equal(t, &share, alloc.share)
		assert.Equal(t, &accountNumber, alloc.accountNumber)

		require.Len(t, notifier.sent, 1)
		assert.Equal(t, "Your onboarding request has been approved. Account 12345 is now active.", notifier.sent[0].message)
		assert.Equal(t, traderID, notifier.sent[0].recipientID)
	})

	t.Run("approval without allocation fails", func(t *testing.T) {
		svc, repo, _, req := submit(t)

		_, err := svc.ReviewOnboarding(context.Background(), reviewerID, req.ID, true, nil, nil)
		assert.ErrorIs(t, err, ErrMissingAllocation)
		assert.Empty(t, repo.reviewed)
	})

	t.Run("denial leaves the allocation untouched", func(t *testing.T) {
		svc, repo, notifier, req := submit(t)

		reviewed, err := svc.ReviewOnboarding(context.Background(), reviewerID, req.ID, false, nil, nil)
		require.NoError(t, err)

		assert.Equal(t, repository.StatusDenied, reviewed.Status)
		assert.Empty(t, repo.allocations)

		require.Len(t, notifier.sent, 1)
		assert.Equal(t, "Your onboarding request has been denied.", notifier.sent[0].message)
	})

	t.Run("double review is rejected", func(t *testing.T) {
		svc, _, _, req := submit(t)

		_, err := svc.ReviewOnboarding(context.Background(), reviewerID, req.ID, false, nil, nil)
		require.NoError(t, err)

		_, err = svc.ReviewOnboarding(context.Background(), reviewerID, req.ID, true, &share, &accountNumber)
		assert.ErrorIs(t, err, ErrAlreadyReviewed)
	})
}
