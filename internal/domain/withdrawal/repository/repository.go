// Package repository provides persistence for withdrawal requests.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no withdrawal request matches the query.
var ErrNotFound = errors.New("withdrawal request not found")

// Withdrawal request statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// WithdrawalRequest is a trader's request to withdraw funds from their
// account. Amounts are exact decimals, never floats.
type WithdrawalRequest struct {
	ID         uuid.UUID
	ProfileID  uuid.UUID
	Amount     decimal.Decimal
	Reason     string
	Status     string
	CreatedAt  time.Time
	ReviewedAt *time.Time
}

// WithdrawalRepository persists and queries withdrawal requests.
type WithdrawalRepository interface {
	Create(ctx context.Context, req *WithdrawalRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*WithdrawalRequest, error)
	List(ctx context.Context, status string) ([]*WithdrawalRequest, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*WithdrawalRequest, error)
	Review(ctx context.Context, req *WithdrawalRequest) error
}

const withdrawalColumns = `id, profile_id, amount::text, reason, status, created_at, reviewed_at`

// PostgresWithdrawalRepository implements WithdrawalRepository using PostgreSQL
type PostgresWithdrawalRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresWithdrawalRepository creates a new PostgreSQL withdrawal repository
func NewPostgresWithdrawalRepository(pool *pgxpool.Pool) *PostgresWithdrawalRepository {
	return &PostgresWithdrawalRepository{pool: pool}
}

// Create inserts a pending withdrawal request
func (r *PostgresWithdrawalRepository) Create(ctx context.Context, req *WithdrawalRequest) error {
	query := `
		INSERT INTO withdrawal_requests (id, profile_id, amount, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Status == "" {
		req.Status = StatusPending
	}

	err := r.pool.QueryRow(ctx, query,
		req.ID,
		req.ProfileID,
		req.Amount.StringFixed(2),
		req.Reason,
		req.Status,
	).Scan(&req.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create withdrawal request: %w", err)
	}
	return nil
}

// GetByID retrieves a withdrawal request by ID
func (r *PostgresWithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	req, err := scanRequest(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal request: %w", err)
	}
	return req, nil
}

// List retrieves requests newest first, optionally filtered by status
func (r *PostgresWithdrawalRepository) List(ctx context.Context, status string) ([]*WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	return r.queryMany(ctx, query, args...)
}

// ListByProfile retrieves one profile's requests, newest first
func (r *PostgresWithdrawalRepository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE profile_id = $1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, profileID)
}

// Review stores the reviewed status and final amount
func (r *PostgresWithdrawalRepository) Review(ctx context.Context, req *WithdrawalRequest) error {
	query := `
		UPDATE withdrawal_requests
		SET status = $2, amount = $3, reviewed_at = $4
		WHERE id = $1`

	now := time.Now()
	req.ReviewedAt = &now

	result, err := r.pool.Exec(ctx, query, req.ID, req.Status, req.Amount.StringFixed(2), req.ReviewedAt)
	if err != nil {
		return fmt.Errorf("failed to review withdrawal request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresWithdrawalRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*WithdrawalRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawal requests: %w", err)
	}
	defer rows.Close()

	var requests []*WithdrawalRequest
	for rows.Next() {
		req, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// scanRequest reads one row. The amount column comes back as text and is
// parsed into a decimal to keep cents exact.
func scanRequest(scan func(...interface{}) error) (*WithdrawalRequest, error) {
	req := &WithdrawalRequest{}
	var amount string
	err := scan(
		&req.ID,
		&req.ProfileID,
		&amount,
		&req.Reason,
		&req.Status,
		&req.CreatedAt,
		&req.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount %q: %w", amount, err)
	}
	return req, nil
}
