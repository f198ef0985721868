package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileColumns = `id, user_id, full_name, email, role, account_number, share, created_at`

// PostgresProfileRepository implements ProfileRepository using PostgreSQL
type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresProfileRepository creates a new PostgreSQL profile repository
func NewPostgresProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

// Create inserts a new profile
func (r *PostgresProfileRepository) Create(ctx context.Context, profile *Profile) error {
	query := `
		INSERT INTO profiles (id, user_id, full_name, email, role, account_number, share)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	if profile.Role == "" {
		profile.Role = RoleUser
	}

	err := r.pool.QueryRow(ctx, query,
		profile.ID,
		profile.UserID,
		profile.FullName,
		profile.Email,
		profile.Role,
		profile.AccountNumber,
		profile.Share,
	).Scan(&profile.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by ID
func (r *PostgresProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.queryOne(ctx, query, id)
}

// GetByUserID retrieves the profile owned by a user
func (r *PostgresProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	return r.queryOne(ctx, query, userID)
}

// GetByAccountNumber retrieves a profile by exact account number match
func (r *PostgresProfileRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE account_number = $1`
	return r.queryOne(ctx, query, accountNumber)
}

// FindFirstByRole retrieves the oldest profile carrying the given role.
// Used to resolve the system identity that notifications are attributed to.
func (r *PostgresProfileRepository) FindFirstByRole(ctx context.Context, role string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE role = $1 ORDER BY created_at ASC LIMIT 1`
	return r.queryOne(ctx, query, role)
}

// ListByRole retrieves all profiles carrying the given role
func (r *PostgresProfileRepository) ListByRole(ctx context.Context, role string) ([]*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE role = $1 ORDER BY created_at ASC`
	return r.queryMany(ctx, query, role)
}

// List retrieves all profiles
func (r *PostgresProfileRepository) List(ctx context.Context) ([]*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at ASC`
	return r.queryMany(ctx, query)
}

// SetAllocation assigns or clears a profile's share and account number
func (r *PostgresProfileRepository) SetAllocation(ctx context.Context, userID uuid.UUID, share *float64, accountNumber *string) error {
	query := `UPDATE profiles SET share = $2, account_number = $3 WHERE user_id = $1`
	result, err := r.pool.Exec(ctx, query, userID, share, accountNumber)
	if err != nil {
		return fmt.Errorf("failed to set allocation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateOnboardingRequest inserts a pending onboarding request
func (r *PostgresProfileRepository) CreateOnboardingRequest(ctx context.Context, req *OnboardingRequest) error {
	query := `
		INSERT INTO onboarding_requests (id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Status == "" {
		req.Status = StatusPending
	}

	err := r.pool.QueryRow(ctx, query, req.ID, req.UserID, req.Status).Scan(&req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create onboarding request: %w", err)
	}
	return nil
}

// GetOnboardingRequest retrieves an onboarding request by ID
func (r *PostgresProfileRepository) GetOnboardingRequest(ctx context.Context, id uuid.UUID) (*OnboardingRequest, error) {
	query := `
		SELECT id, user_id, status, share, account_number, created_at, reviewed_at
		FROM onboarding_requests
		WHERE id = $1`

	req := &OnboardingRequest{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.UserID,
		&req.Status,
		&req.Share,
		&req.AccountNumber,
		&req.CreatedAt,
		&req.ReviewedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get onboarding request: %w", err)
	}
	return req, nil
}

// ListOnboardingRequests retrieves requests, optionally filtered by status
func (r *PostgresProfileRepository) ListOnboardingRequests(ctx context.Context, status string) ([]*OnboardingRequest, error) {
	query := `
		SELECT id, user_id, status, share, account_number, created_at, reviewed_at
		FROM onboarding_requests`

	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list onboarding requests: %w", err)
	}
	defer rows.Close()

	var requests []*OnboardingRequest
	for rows.Next() {
		req := &OnboardingRequest{}
		err := rows.Scan(
			&req.ID,
			&req.UserID,
			&req.Status,
			&req.Share,
			&req.AccountNumber,
			&req.CreatedAt,
			&req.ReviewedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan onboarding request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// ReviewOnboardingRequest stores the reviewed status, share, and account number
func (r *PostgresProfileRepository) ReviewOnboardingRequest(ctx context.Context, req *OnboardingRequest) error {
	query := `
		UPDATE onboarding_requests
		SET status = $2, share = $3, account_number = $4, reviewed_at = $5
		WHERE id = $1`

	now := time.Now()
	req.ReviewedAt = &now

	result, err := r.pool.Exec(ctx, query, req.ID, req.Status, req.Share, req.AccountNumber, req.ReviewedAt)
	if err != nil {
		return fmt.Errorf("failed to review onboarding request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresProfileRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*Profile, error) {
	profile := &Profile{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.Email,
		&profile.Role,
		&profile.AccountNumber,
		&profile.Share,
		&profile.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (r *PostgresProfileRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*Profile, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		profile := &Profile{}
		err := rows.Scan(
			&profile.ID,
			&profile.UserID,
			&profile.FullName,
			&profile.Email,
			&profile.Role,
			&profile.AccountNumber,
			&profile.Share,
			&profile.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}
