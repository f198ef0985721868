package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// categoryTables dispatches each ledger category onto its physical table.
// The four tables share an identical column layout.
var categoryTables = map[Category]string{
	CategoryEquity:   "equity_performance",
	CategoryOptions:  "options_performance",
	CategoryIntraday: "intraday_performance",
	CategoryTotal:    "total_performance",
}

// RowQuerier is the slice of the pgx pool the ledger repository needs.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresLedgerRepository implements LedgerRepository using PostgreSQL
type PostgresLedgerRepository struct {
	pool RowQuerier
}

// NewPostgresLedgerRepository creates a new PostgreSQL ledger repository
func NewPostgresLedgerRepository(pool RowQuerier) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{pool: pool}
}

// CreateEntry inserts a ledger entry into the table for the given category.
func (r *PostgresLedgerRepository) CreateEntry(ctx context.Context, category Category, entry *LedgerEntry) error {
	table, ok := categoryTables[category]
	if !ok {
		table = categoryTables[CategoryTotal]
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, profile_id, recorded_at, account_number, account_type,
			orders, fills, qty,
			start_cash, start_unrealized, start_balance,
			trade_fees, net, adj_fees, adj_net, unrealized_delta,
			total, transfer, end_cash, end_unrealized, end_balance,
			gross, comm, ecn_fee, sec, orf, cat, taf, nfa, nscc, acc, clr, misc,
			fee_daily_interest, fee_dividends, fee_misc, fee_short_interest,
			stock_locate, tech_fees, cash_in_out
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
			$31, $32, $33, $34, $35, $36, $37, $38, $39, $40)
		RETURNING created_at`, table)

	err := r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.ProfileID,
		entry.RecordedAt,
		entry.AccountNumber,
		entry.AccountType,
		entry.Orders,
		entry.Fills,
		entry.Qty,
		entry.StartCash,
		entry.StartUnrealized,
		entry.StartBalance,
		entry.TradeFees,
		entry.Net,
		entry.AdjFees,
		entry.AdjNet,
		entry.UnrealizedDelta,
		entry.Total,
		entry.Transfer,
		entry.EndCash,
		entry.EndUnrealized,
		entry.EndBalance,
		entry.Gross,
		entry.Comm,
		entry.EcnFee,
		entry.Sec,
		entry.Orf,
		entry.Cat,
		entry.Taf,
		entry.Nfa,
		entry.Nscc,
		entry.Acc,
		entry.Clr,
		entry.Misc,
		entry.FeeDailyInterest,
		entry.FeeDividends,
		entry.FeeMisc,
		entry.FeeShortInterest,
		entry.StockLocate,
		entry.TechFees,
		entry.CashInOut,
	).Scan(&entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create %s entry: %w", table, err)
	}
	return nil
}
