// Package service implements performance analytics queries and export.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	ledger "github.com/propdesk/backoffice/internal/domain/ingest/repository"
	"github.com/propdesk/backoffice/internal/domain/performance/repository"
	profilerepo "github.com/propdesk/backoffice/internal/domain/profile/repository"
)

// ErrNoProfile is returned when the caller has no profile to query against.
var ErrNoProfile = errors.New("no profile for user")

// Service answers performance queries scoped to the caller's role: admins
// see every profile's ledger, traders only their own.
type Service struct {
	performance repository.PerformanceRepository
	profiles    profilerepo.ProfileRepository
	logger      *slog.Logger
}

// NewService creates a new performance service
func NewService(performance repository.PerformanceRepository, profiles profilerepo.ProfileRepository, logger *slog.Logger) *Service {
	return &Service{
		performance: performance,
		profiles:    profiles,
		logger:      logger,
	}
}

// ListForUser returns the caller's own ledger entries for one category.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, category ledger.Category, filter repository.Filter) ([]*ledger.LedgerEntry, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, profilerepo.ErrNotFound) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, err
	}
	return s.performance.ListByProfile(ctx, category, profile.ID, filter)
}

// ListAll returns ledger entries across every profile. Admin only; the
// handler enforces the role.
func (s *Service) ListAll(ctx context.Context, category ledger.Category, filter repository.Filter) ([]*ledger.LedgerEntry, error) {
	return s.performance.ListAll(ctx, category, filter)
}

// csvEntry is the flat export row. Only the headline columns go out; the
// full fee breakdown stays in the API response.
type csvEntry struct {
	RecordedAt    string  `csv:"recorded_at"`
	AccountNumber int64   `csv:"account_number"`
	AccountType   string  `csv:"account_type"`
	Orders        float64 `csv:"orders"`
	Fills         float64 `csv:"fills"`
	Qty           float64 `csv:"qty"`
	Gross         float64 `csv:"gross"`
	Net           float64 `csv:"net"`
	AdjNet        float64 `csv:"adj_net"`
	TradeFees     float64 `csv:"trade_fees"`
	Total         float64 `csv:"total"`
	EndBalance    float64 `csv:"end_balance"`
}

// ExportCSV writes the given entries as CSV.
func (s *Service) ExportCSV(entries []*ledger.LedgerEntry, w io.Writer) error {
	rows := make([]*csvEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, &csvEntry{
			RecordedAt:    e.RecordedAt.Format("2006-01-02"),
			AccountNumber: e.AccountNumber,
			AccountType:   string(e.AccountType),
			Orders:        e.Orders,
			Fills:         e.Fills,
			Qty:           e.Qty,
			Gross:         e.Gross,
			Net:           e.Net,
			AdjNet:        e.AdjNet,
			TradeFees:     e.TradeFees,
			Total:         e.Total,
			EndBalance:    e.EndBalance,
		})
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
