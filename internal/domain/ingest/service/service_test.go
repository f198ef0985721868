package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/propdesk/backoffice/internal/domain/ingest/repository"
	profilerepo "github.com/propdesk/backoffice/internal/domain/profile/repository"
)

type mockLedger struct {
	entries   []*repository.LedgerEntry
	byTable   map[repository.Category]int
	createErr error
}

func (m *mockLedger) CreateEntry(ctx context.Context, category repository.Category, entry *repository.LedgerEntry) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.byTable == nil {
		m.byTable = map[repository.Category]int{}
	}
	m.entries = append(m.entries, entry)
	m.byTable[category]++
	return nil
}

type mockProfiles struct {
	byAccount map[string]*profilerepo.Profile
	admin     *profilerepo.Profile
}

func (m *mockProfiles) GetByAccountNumber(ctx context.Context, accountNumber string) (*profilerepo.Profile, error) {
	if p, ok := m.byAccount[accountNumber]; ok {
		return p, nil
	}
	return nil, profilerepo.ErrNotFound
}

func (m *mockProfiles) FindFirstByRole(ctx context.Context, role string) (*profilerepo.Profile, error) {
	if m.admin == nil {
		return nil, profilerepo.ErrNotFound
	}
	return m.admin, nil
}

type sentNotification struct {
	notificationType string
	message          string
	senderID         uuid.UUID
	recipientID      uuid.UUID
}

type mockNotifier struct {
	sent      []sentNotification
	notifyErr error
}

func (m *mockNotifier) Notify(ctx context.Context, notificationType, message string, senderID, recipientID uuid.UUID) error {
	if m.notifyErr != nil {
		return m.notifyErr
	}
	m.sent = append(m.sent, sentNotification{notificationType, message, senderID, recipientID})
	return nil
}

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func knownProfile(accountNumber string) *profilerepo.Profile {
	return &profilerepo.Profile{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		FullName:      "Jordan Reyes",
		AccountNumber: &accountNumber,
	}
}

func TestIngest(t *testing.T) {
	header := []interface{}{"Account", "Type", "Net", "Start Cash", "Total Δ"}

	t.Run("posts resolvable rows and skips the rest", func(t *testing.T) {
		profile := knownProfile("12345")
		profiles := &mockProfiles{byAccount: map[string]*profilerepo.Profile{"12345": profile}}
		ledger := &mockLedger{}
		notifier := &mockNotifier{}
		uploader := uuid.New()

		buf := workbook(t, [][]interface{}{
			header,
			{"12345", "Eq", "1,000.50", "(250)", "750.50"},
			{"", "Eq", "10", "0", "10"},
			{"99999", "Op", "5", "0", "5"},
		})

		svc := NewService(ledger, profiles, notifier, testLogger())
		summary, err := svc.Ingest(context.Background(), buf, uploader)
		require.NoError(t, err)

		assert.Equal(t, 3, summary.Total)
		assert.Equal(t, 1, summary.Successful)
		assert.Equal(t, 2, summary.Skipped)

		require.Len(t, ledger.entries, 1)
		entry := ledger.entries[0]
		assert.Equal(t, profile.ID, entry.ProfileID)
		assert.Equal(t, int64(12345), entry.AccountNumber)
		assert.Equal(t, repository.CategoryEquity, entry.AccountType)
		assert.InDelta(t, 1000.50, entry.Net, 1e-9)
		assert.InDelta(t, -250, entry.StartCash, 1e-9)
		assert.InDelta(t, 750.50, entry.Total, 1e-9)

		require.Len(t, notifier.sent, 1)
		assert.Equal(t, "Performance data has been uploaded for account 12345.", notifier.sent[0].message)
		assert.Equal(t, uploader, notifier.sent[0].senderID)
		assert.Equal(t, profile.UserID, notifier.sent[0].recipientID)
	})

	t.Run("unknown account type lands in the total bucket", func(t *testing.T) {
		profiles := &mockProfiles{byAccount: map[string]*profilerepo.Profile{"12345": knownProfile("12345")}}
		ledger := &mockLedger{}

		buf := workbook(t, [][]interface{}{
			header,
			{"12345", "Equity", "10", "0", "10"},
		})

		svc := NewService(ledger, profiles, &mockNotifier{}, testLogger())
		_, err := svc.Ingest(context.Background(), buf, uuid.New())
		require.NoError(t, err)

		assert.Equal(t, 1, ledger.byTable[repository.CategoryTotal])
	})

	t.Run("integral float account numbers resolve", func(t *testing.T) {
		profiles := &mockProfiles{byAccount: map[string]*profilerepo.Profile{"12345": knownProfile("12345")}}
		ledger := &mockLedger{}

		buf := workbook(t, [][]interface{}{
			header,
			{"12345.0", "Eq", "10", "0", "10"},
		})

		svc := NewService(ledger, profiles, &mockNotifier{}, testLogger())
		summary, err := svc.Ingest(context.Background(), buf, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Successful)
	})

	t.Run("notification failure does not fail the row", func(t *testing.T) {
		profiles := &mockProfiles{byAccount: map[string]*profilerepo.Profile{"12345": knownProfile("12345")}}
		ledger := &mockLedger{}
		notifier := &mockNotifier{notifyErr: errors.New("inbox unavailable")}

		buf := workbook(t, [][]interface{}{
			header,
			{"12345", "Eq", "10", "0", "10"},
		})

		svc := NewService(ledger, profiles, notifier, testLogger())
		summary, err := svc.Ingest(context.Background(), buf, uuid.New())
		require.NoError(t, err)

		assert.Equal(t, 1, summary.Successful)
		assert.Len(t, ledger.entries, 1)
	})

	t.Run("persistence failure aborts the run", func(t *testing.T) {
		profiles := &mockProfiles{byAccount: map[string]*profilerepo.Profile{"12345": knownProfile("12345")}}
		ledger := &mockLedger{createErr: errors.New("connection lost")}

		buf := workbook(t, [][]interface{}{
			header,
			{"12345", "Eq", "10", "0", "10"},
		})

		svc := NewService(ledger, profiles, &mockNotifier{}, testLogger())
		_, err := svc.Ingest(context.Background(), buf, uuid.New())
		assert.Error(t, err)
	})

	t.Run("resubmitting the same file posts duplicate entries", func(t *testing.T) {
		profiles := &mockProfiles{byAccount: map[string]*profilerepo.Profile{"12345": knownProfile("12345")}}
		ledger := &mockLedger{}
		svc := NewService(ledger, profiles, &mockNotifier{}, testLogger())

		rows := [][]interface{}{
			header,
			{"12345", "Eq", "10", "0", "10"},
		}
		for i := 0; i < 2; i++ {
			_, err := svc.Ingest(context.Background(), workbook(t, rows), uuid.New())
			require.NoError(t, err)
		}

		assert.Len(t, ledger.entries, 2)
	})

	t.Run("zero uploader falls back to the oldest admin", func(t *testing.T) {
		admin := &profilerepo.Profile{ID: uuid.New(), UserID: uuid.New()}
		profile := knownProfile("12345")
		profiles := &mockProfiles{
			byAccount: map[string]*profilerepo.Profile{"12345": profile},
			admin:     admin,
		}
		notifier := &mockNotifier{}

		buf := workbook(t, [][]interface{}{
			header,
			{"12345", "Eq", "10", "0", "10"},
		})

		svc := NewService(&mockLedger{}, profiles, notifier, testLogger())
		_, err := svc.Ingest(context.Background(), buf, uuid.Nil)
		require.NoError(t, err)

		require.Len(t, notifier.sent, 1)
		assert.Equal(t, admin.UserID, notifier.sent[0].senderID)
	})

	t.Run("unreadable workbook fails", func(t *testing.T) {
		svc := NewService(&mockLedger{}, &mockProfiles{}, &mockNotifier{}, testLogger())
		_, err := svc.Ingest(context.Background(), bytes.NewBufferString("junk"), uuid.New())
		assert.Error(t, err)
	})
}

func TestParseAccountNumber(t *testing.T) {
	tests := []struct {
		input  string
		want   int64
		wantOK bool
	}{
		{"12345", 12345, true},
		{"12345.0", 12345, true},
		{"0", 0, false},
		{"0.0", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"123.45", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseAccountNumber(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
