package service

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledger "github.com/propdesk/backoffice/internal/domain/ingest/repository"
	"github.com/propdesk/backoffice/internal/domain/performance/repository"
	profilerepo "github.com/propdesk/backoffice/internal/domain/profile/repository"
)

type mockPerformance struct {
	entries []*ledger.LedgerEntry

	lastCategory  ledger.Category
	lastProfileID uuid.UUID
	lastFilter    repository.Filter
	listedAll     bool
}

func (m *mockPerformance) ListByProfile(ctx context.Context, category ledger.Category, profileID uuid.UUID, filter repository.Filter) ([]*ledger.LedgerEntry, error) {
	m.lastCategory = category
	m.lastProfileID = profileID
	m.lastFilter = filter
	return m.entries, nil
}

func (m *mockPerformance) ListAll(ctx context.Context, category ledger.Category, filter repository.Filter) ([]*ledger.LedgerEntry, error) {
	m.lastCategory = category
	m.lastFilter = filter
	m.listedAll = true
	return m.entries, nil
}

// mockProfileRepo satisfies the full repository interface; only GetByUserID
// is implemented.
type mockProfileRepo struct {
	profilerepo.ProfileRepository

	byUserID map[uuid.UUID]*profilerepo.Profile
}

func (m *mockProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*profilerepo.Profile, error) {
	if p, ok := m.byUserID[userID]; ok {
		return p, nil
	}
	return nil, profilerepo.ErrNotFound
}

func TestListForUser(t *testing.T) {
	userID := uuid.New()
	profile := &profilerepo.Profile{ID: uuid.New(), UserID: userID}
	profiles := &mockProfileRepo{byUserID: map[uuid.UUID]*profilerepo.Profile{userID: profile}}

	t.Run("scopes the query to the caller's profile", func(t *testing.T) {
		performance := &mockPerformance{}
		svc := NewService(performance, profiles, slog.New(slog.DiscardHandler))

		filter := repository.Filter{Limit: 25}
		_, err := svc.ListForUser(context.Background(), userID, ledger.CategoryEquity, filter)
		require.NoError(t, err)

		assert.Equal(t, profile.ID, performance.lastProfileID)
		assert.Equal(t, ledger.CategoryEquity, performance.lastCategory)
		assert.Equal(t, filter, performance.lastFilter)
		assert.False(t, performance.listedAll)
	})

	t.Run("no profile yields ErrNoProfile", func(t *testing.T) {
		svc := NewService(&mockPerformance{}, profiles, slog.New(slog.DiscardHandler))
		_, err := svc.ListForUser(context.Background(), uuid.New(), ledger.CategoryTotal, repository.Filter{})
		assert.ErrorIs(t, err, ErrNoProfile)
	})
}

func TestExportCSV(t *testing.T) {
	svc := NewService(&mockPerformance{}, &mockProfileRepo{}, slog.New(slog.DiscardHandler))

	entries := []*ledger.LedgerEntry{
		{
			RecordedAt:    time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC),
			AccountNumber: 12345,
			AccountType:   ledger.CategoryEquity,
			Net:           1000.50,
			Gross:         1100,
			Total:         950.25,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(entries, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "recorded_at")
	assert.Contains(t, lines[0], "account_number")
	assert.Contains(t, lines[1], "2026-08-14")
	assert.Contains(t, lines[1], "12345")
	assert.Contains(t, lines[1], "1000.5")
}
