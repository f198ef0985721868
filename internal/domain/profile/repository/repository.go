// Package repository provides persistence for account profiles and
// onboarding requests.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no profile or request matches the query.
var ErrNotFound = errors.New("not found")

// Roles assignable to a profile.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Onboarding request statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDenied   = "denied"
)

// Profile is the account profile owning ledger entries. AccountNumber and
// Share stay nil until an onboarding request is approved.
type Profile struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	FullName      string
	Email         string
	Role          string
	AccountNumber *string
	Share         *float64
	CreatedAt     time.Time
}

// OnboardingRequest tracks a trader's request to be assigned a live account.
type OnboardingRequest struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Status        string
	Share         *float64
	AccountNumber *string
	CreatedAt     time.Time
	ReviewedAt    *time.Time
}

// ProfileRepository exposes profile lookups and onboarding persistence.
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (*Profile, error)
	FindFirstByRole(ctx context.Context, role string) (*Profile, error)
	ListByRole(ctx context.Context, role string) ([]*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
	SetAllocation(ctx context.Context, userID uuid.UUID, share *float64, accountNumber *string) error

	CreateOnboardingRequest(ctx context.Context, req *OnboardingRequest) error
	GetOnboardingRequest(ctx context.Context, id uuid.UUID) (*OnboardingRequest, error)
	ListOnboardingRequests(ctx context.Context, status string) ([]*OnboardingRequest, error)
	ReviewOnboardingRequest(ctx context.Context, req *OnboardingRequest) error
}
