package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category tags a ledger entry with one of the four performance buckets.
type Category string

const (
	CategoryEquity   Category = "Eq"
	CategoryOptions  Category = "Op"
	CategoryIntraday Category = "In"
	CategoryTotal    Category = "Total"
)

// ResolveAccountType maps a raw type code to a ledger category. Matching is
// exact and case sensitive; anything unrecognized lands in the catch-all
// Total bucket.
func ResolveAccountType(raw string) Category {
	switch Category(strings.TrimSpace(raw)) {
	case CategoryEquity:
		return CategoryEquity
	case CategoryOptions:
		return CategoryOptions
	case CategoryIntraday:
		return CategoryIntraday
	case CategoryTotal:
		return CategoryTotal
	default:
		return CategoryTotal
	}
}

// LedgerEntry is one row of clearing-report performance data. Entries are
// immutable once created; there is no update or delete path.
type LedgerEntry struct {
	ID            uuid.UUID
	ProfileID     uuid.UUID
	RecordedAt    time.Time
	AccountNumber int64
	AccountType   Category

	Orders           float64
	Fills            float64
	Qty              float64
	StartCash        float64
	StartUnrealized  float64
	StartBalance     float64
	TradeFees        float64
	Net              float64
	AdjFees          float64
	AdjNet           float64
	UnrealizedDelta  float64
	Total            float64
	Transfer         float64
	EndCash          float64
	EndUnrealized    float64
	EndBalance       float64
	Gross            float64
	Comm             float64
	EcnFee           float64
	Sec              float64
	Orf              float64
	Cat              float64
	Taf              float64
	Nfa              float64
	Nscc             float64
	Acc              float64
	Clr              float64
	Misc             float64
	FeeDailyInterest float64
	FeeDividends     float64
	FeeMisc          float64
	FeeShortInterest float64
	StockLocate      float64
	TechFees         float64
	CashInOut        float64

	CreatedAt time.Time
}

// LedgerRepository persists ledger entries into the category tables.
type LedgerRepository interface {
	CreateEntry(ctx context.Context, category Category, entry *LedgerEntry) error
}
