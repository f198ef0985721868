// Package repository provides read access to the performance ledger tables.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	ledger "github.com/propdesk/backoffice/internal/domain/ingest/repository"
)

// Filter narrows a ledger query. Zero values mean "no constraint", except
// Limit, which defaults to 100.
type Filter struct {
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// PerformanceRepository reads posted ledger entries per category.
type PerformanceRepository interface {
	ListByProfile(ctx context.Context, category ledger.Category, profileID uuid.UUID, filter Filter) ([]*ledger.LedgerEntry, error)
	ListAll(ctx context.Context, category ledger.Category, filter Filter) ([]*ledger.LedgerEntry, error)
}

var categoryTables = map[ledger.Category]string{
	ledger.CategoryEquity:   "equity_performance",
	ledger.CategoryOptions:  "options_performance",
	ledger.CategoryIntraday: "intraday_performance",
	ledger.CategoryTotal:    "total_performance",
}

const entryColumns = `
	id, profile_id, recorded_at, account_number, account_type,
	orders, fills, qty,
	start_cash, start_unrealized, start_balance,
	trade_fees, net, adj_fees, adj_net, unrealized_delta,
	total, transfer, end_cash, end_unrealized, end_balance,
	gross, comm, ecn_fee, sec, orf, cat, taf, nfa, nscc, acc, clr, misc,
	fee_daily_interest, fee_dividends, fee_misc, fee_short_interest,
	stock_locate, tech_fees, cash_in_out, created_at`

// PostgresPerformanceRepository implements PerformanceRepository using PostgreSQL
type PostgresPerformanceRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPerformanceRepository creates a new PostgreSQL performance repository
func NewPostgresPerformanceRepository(pool *pgxpool.Pool) *PostgresPerformanceRepository {
	return &PostgresPerformanceRepository{pool: pool}
}

// ListByProfile retrieves a profile's entries for one category, newest first.
func (r *PostgresPerformanceRepository) ListByProfile(ctx context.Context, category ledger.Category, profileID uuid.UUID, filter Filter) ([]*ledger.LedgerEntry, error) {
	table, ok := categoryTables[category]
	if !ok {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	query := `SELECT ` + entryColumns + ` FROM ` + table + ` WHERE profile_id = $1`
	args := []interface{}{profileID}
	query, args = applyFilter(query, args, filter)

	return r.queryEntries(ctx, query, args)
}

// ListAll retrieves entries across all profiles for one category, newest first.
func (r *PostgresPerformanceRepository) ListAll(ctx context.Context, category ledger.Category, filter Filter) ([]*ledger.LedgerEntry, error) {
	table, ok := categoryTables[category]
	if !ok {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	query := `SELECT ` + entryColumns + ` FROM ` + table + ` WHERE TRUE`
	args := []interface{}{}
	query, args = applyFilter(query, args, filter)

	return r.queryEntries(ctx, query, args)
}

func applyFilter(query string, args []interface{}, filter Filter) (string, []interface{}) {
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND recorded_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND recorded_at <= $%d", len(args))
	}

	query += " ORDER BY recorded_at DESC, created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return query, args
}

func (r *PostgresPerformanceRepository) queryEntries(ctx context.Context, query string, args []interface{}) ([]*ledger.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.LedgerEntry
	for rows.Next() {
		e := &ledger.LedgerEntry{}
		err := rows.Scan(
			&e.ID, &e.ProfileID, &e.RecordedAt, &e.AccountNumber, &e.AccountType,
			&e.Orders, &e.Fills, &e.Qty,
			&e.StartCash, &e.StartUnrealized, &e.StartBalance,
			&e.TradeFees, &e.Net, &e.AdjFees, &e.AdjNet, &e.UnrealizedDelta,
			&e.Total, &e.Transfer, &e.EndCash, &e.EndUnrealized, &e.EndBalance,
			&e.Gross, &e.Comm, &e.EcnFee, &e.Sec, &e.Orf, &e.Cat, &e.Taf,
			&e.Nfa, &e.Nscc, &e.Acc, &e.Clr, &e.Misc,
			&e.FeeDailyInterest, &e.FeeDividends, &e.FeeMisc, &e.FeeShortInterest,
			&e.StockLocate, &e.TechFees, &e.CashInOut, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
