// Package service orchestrates clearing-report ingestion: parse the uploaded
// workbook, resolve each row to an account profile, post ledger entries, and
// notify affected traders.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/propdesk/backoffice/internal/domain/ingest/normalizer"
	"github.com/propdesk/backoffice/internal/domain/ingest/parser"
	"github.com/propdesk/backoffice/internal/domain/ingest/repository"
	notificationsvc "github.com/propdesk/backoffice/internal/domain/notification/service"
	profilerepo "github.com/propdesk/backoffice/internal/domain/profile/repository"
	"github.com/propdesk/backoffice/pkg/metrics"
)

// ProfileResolver looks up the profiles that ledger rows are posted against.
type ProfileResolver interface {
	GetByAccountNumber(ctx context.Context, accountNumber string) (*profilerepo.Profile, error)
	FindFirstByRole(ctx context.Context, role string) (*profilerepo.Profile, error)
}

// NotificationDispatcher records an in-app notification for a recipient.
type NotificationDispatcher interface {
	Notify(ctx context.Context, notificationType, message string, senderID, recipientID uuid.UUID) error
}

// Summary reports the outcome of one ingestion run.
type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Skipped    int `json:"skipped"`
}

// Service ingests clearing-report workbooks into the performance ledger.
type Service struct {
	ledger   repository.LedgerRepository
	profiles ProfileResolver
	notifier NotificationDispatcher
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewService creates a new ingest service
func NewService(ledger repository.LedgerRepository, profiles ProfileResolver, notifier NotificationDispatcher, logger *slog.Logger) *Service {
	return &Service{
		ledger:   ledger,
		profiles: profiles,
		notifier: notifier,
		logger:   logger,
		tracer:   otel.Tracer("backoffice/ingest"),
	}
}

// Ingest parses an xlsx clearing report and posts one ledger entry per
// resolvable row. Rows without a usable account number, or whose account
// number matches no profile, are counted as skipped. A persistence failure
// aborts the run; rows already posted stay posted.
//
// uploadedBy identifies the admin performing the upload and is recorded as
// the notification sender. When zero, the oldest admin profile is used so
// batch ingestion without a session still attributes notifications.
func (s *Service) Ingest(ctx context.Context, file io.Reader, uploadedBy uuid.UUID) (*Summary, error) {
	ctx, span := s.tracer.Start(ctx, "ingest.Ingest")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.IngestDuration.Observe(time.Since(start).Seconds())
	}()

	rows, err := parser.ParseWorkbook(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse workbook: %w", err)
	}

	senderID, err := s.resolveSender(ctx, uploadedBy)
	if err != nil {
		return nil, err
	}

	recordedAt := time.Now()
	summary := &Summary{Total: len(rows)}

	for i, raw := range rows {
		row := normalizer.NormalizeRow(raw)

		accountNumber, ok := parseAccountNumber(row["accountNumber"])
		if !ok {
			s.logger.Debug("row skipped, no account number", slog.Int("row", i+1))
			summary.Skipped++
			metrics.RowsSkipped.Inc()
			continue
		}

		profile, err := s.profiles.GetByAccountNumber(ctx, strconv.FormatInt(accountNumber, 10))
		if errors.Is(err, profilerepo.ErrNotFound) {
			s.logger.Warn("row skipped, unknown account",
				slog.Int("row", i+1),
				slog.Int64("account_number", accountNumber),
			)
			summary.Skipped++
			metrics.RowsSkipped.Inc()
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve account %d: %w", accountNumber, err)
		}

		category := repository.ResolveAccountType(row["accountType"])
		entry := buildEntry(row, profile.ID, accountNumber, category, recordedAt)

		if err := s.ledger.CreateEntry(ctx, category, entry); err != nil {
			return nil, fmt.Errorf("failed to post row %d: %w", i+1, err)
		}
		summary.Successful++
		metrics.RowsIngested.WithLabelValues(string(category)).Inc()

		// Delivery is best effort. A failed notification never rolls
		// back a posted entry.
		message := fmt.Sprintf("Performance data has been uploaded for account %d.", accountNumber)
		if err := s.notifier.Notify(ctx, notificationsvc.TypePerformanceUpload, message, senderID, profile.UserID); err != nil {
			s.logger.Warn("failed to notify trader",
				slog.String("profile_id", profile.ID.String()),
				slog.Any("error", err),
			)
		} else {
			metrics.NotificationsDispatched.WithLabelValues(notificationsvc.TypePerformanceUpload).Inc()
		}
	}

	span.SetAttributes(
		attribute.Int("ingest.rows_total", summary.Total),
		attribute.Int("ingest.rows_successful", summary.Successful),
		attribute.Int("ingest.rows_skipped", summary.Skipped),
	)
	s.logger.Info("ingestion finished",
		slog.Int("total", summary.Total),
		slog.Int("successful", summary.Successful),
		slog.Int("skipped", summary.Skipped),
	)

	return summary, nil
}

func (s *Service) resolveSender(ctx context.Context, uploadedBy uuid.UUID) (uuid.UUID, error) {
	if uploadedBy != uuid.Nil {
		return uploadedBy, nil
	}
	admin, err := s.profiles.FindFirstByRole(ctx, profilerepo.RoleAdmin)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve uploading identity: %w", err)
	}
	return admin.UserID, nil
}

// parseAccountNumber accepts integer-like cell text, including integral
// floats such as "12345.0". Zero and non-numeric values are rejected.
func parseAccountNumber(value string) (int64, bool) {
	if value == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		if n == 0 {
			return 0, false
		}
		return n, true
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != float64(int64(f)) || int64(f) == 0 {
		return 0, false
	}
	return int64(f), true
}

func buildEntry(row map[string]string, profileID uuid.UUID, accountNumber int64, category repository.Category, recordedAt time.Time) *repository.LedgerEntry {
	num := func(key string) float64 {
		return normalizer.ParseCurrency(row[key])
	}

	return &repository.LedgerEntry{
		ProfileID:        profileID,
		RecordedAt:       recordedAt,
		AccountNumber:    accountNumber,
		AccountType:      category,
		Orders:           num("orders"),
		Fills:            num("fills"),
		Qty:              num("qty"),
		StartCash:        num("startCash"),
		StartUnrealized:  num("startUnrealized"),
		StartBalance:     num("startBalance"),
		TradeFees:        num("tradeFees"),
		Net:              num("net"),
		AdjFees:          num("adjFees"),
		AdjNet:           num("adjNet"),
		UnrealizedDelta:  num("unrealizedDelta"),
		Total:            num("total"),
		Transfer:         num("transfer"),
		EndCash:          num("endCash"),
		EndUnrealized:    num("endUnrealized"),
		EndBalance:       num("endBalance"),
		Gross:            num("gross"),
		Comm:             num("comm"),
		EcnFee:           num("ecnFee"),
		Sec:              num("sec"),
		Orf:              num("orf"),
		Cat:              num("cat"),
		Taf:              num("taf"),
		Nfa:              num("nfa"),
		Nscc:             num("nscc"),
		Acc:              num("acc"),
		Clr:              num("clr"),
		Misc:             num("misc"),
		FeeDailyInterest: num("feeDailyInterest"),
		FeeDividends:     num("feeDividends"),
		FeeMisc:          num("feeMisc"),
		FeeShortInterest: num("feeShortInterest"),
		StockLocate:      num("stockLocate"),
		TechFees:         num("techFees"),
		CashInOut:        num("cashInOut"),
	}
}
