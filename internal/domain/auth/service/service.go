// Package service implements credential checks and JWT session tokens.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/propdesk/backoffice/internal/domain/auth/repository"
	profilerepo "github.com/propdesk/backoffice/internal/domain/profile/repository"
)

// tokenTTL is how long issued session tokens stay valid.
const tokenTTL = 24 * time.Hour

var (
	// ErrInvalidCredentials is returned for unknown emails, wrong
	// passwords, and deactivated accounts alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is returned when registering a duplicate email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidToken is returned for expired or malformed tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the authenticated caller extracted from a session token.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

// Claims is the JWT payload issued at login.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service handles registration, login, and token verification.
type Service struct {
	users    repository.UserRepository
	profiles profilerepo.ProfileRepository
	secret   []byte
	logger   *slog.Logger
}

// NewService creates a new auth service
func NewService(users repository.UserRepository, profiles profilerepo.ProfileRepository, jwtSecret string, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		profiles: profiles,
		secret:   []byte(jwtSecret),
		logger:   logger,
	}
}

// Register creates a user with a hashed password and an empty profile.
// New profiles start with the trader role and no account allocation.
func (s *Service) Register(ctx context.Context, email, username, password string) (*repository.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &repository.User{
		Email:          email,
		Username:       username,
		HashedPassword: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	profile := &profilerepo.Profile{
		UserID:   user.ID,
		FullName: username,
		Email:    email,
		Role:     profilerepo.RoleUser,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Login verifies credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !user.IsActive {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	profile, err := s.profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load profile: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to stamp last login", slog.Any("error", err))
	}

	token, err := s.issueToken(user.ID, profile.Role)
	if err != nil {
		return "", err
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID.String()))
	return token, nil
}

// VerifyToken validates a session token and returns the caller's identity.
func (s *Service) VerifyToken(tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: userID, Role: claims.Role}, nil
}

func (s *Service) issueToken(userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
