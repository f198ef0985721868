package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propdesk/backoffice/internal/domain/auth/repository"
	profilerepo "github.com/propdesk/backoffice/internal/domain/profile/repository"
)

type mockUsers struct {
	byEmail map[string]*repository.User
	byID    map[uuid.UUID]*repository.User
}

func newMockUsers() *mockUsers {
	return &mockUsers{
		byEmail: map[string]*repository.User{},
		byID:    map[uuid.UUID]*repository.User{},
	}
}

func (m *mockUsers) Create(ctx context.Context, user *repository.User) error {
	user.ID = uuid.New()
	user.IsActive = true
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *mockUsers) GetByID(ctx context.Context, id uuid.UUID) (*repository.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUsers) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	return nil
}

// mockProfileRepo satisfies the full repository interface; only the methods
// the auth service touches are implemented.
type mockProfileRepo struct {
	profilerepo.ProfileRepository

	byUserID map[uuid.UUID]*profilerepo.Profile
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *profilerepo.Profile) error {
	profile.ID = uuid.New()
	if profile.Role == "" {
		profile.Role = profilerepo.RoleUser
	}
	m.byUserID[profile.UserID] = profile
	return nil
}

func (m *mockProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*profilerepo.Profile, error) {
	if p, ok := m.byUserID[userID]; ok {
		return p, nil
	}
	return nil, profilerepo.ErrNotFound
}

func newService() (*Service, *mockUsers, *mockProfileRepo) {
	users := newMockUsers()
	profiles := &mockProfileRepo{byUserID: map[uuid.UUID]*profilerepo.Profile{}}
	svc := NewService(users, profiles, "test-secret", slog.New(slog.DiscardHandler))
	return svc, users, profiles
}

func TestRegister(t *testing.T) {
	t.Run("creates user and profile", func(t *testing.T) {
		svc, users, profiles := newService()

		user, err := svc.Register(context.Background(), "trader@desk.example", "Jordan Reyes", "s3cret-pass")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.NotEqual(t, "s3cret-pass", user.HashedPassword)
		assert.Contains(t, users.byEmail, "trader@desk.example")

		profile, ok := profiles.byUserID[user.ID]
		require.True(t, ok)
		assert.Equal(t, profilerepo.RoleUser, profile.Role)
		assert.Nil(t, profile.AccountNumber)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		svc, _, _ := newService()

		_, err := svc.Register(context.Background(), "trader@desk.example", "Jordan", "s3cret-pass")
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), "trader@desk.example", "Other", "s3cret-pass")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestLoginAndVerify(t *testing.T) {
	t.Run("round trip yields the caller's identity", func(t *testing.T) {
		svc, _, profiles := newService()

		user, err := svc.Register(context.Background(), "admin@desk.example", "Dana", "s3cret-pass")
		require.NoError(t, err)
		profiles.byUserID[user.ID].Role = profilerepo.RoleAdmin

		token, err := svc.Login(context.Background(), "admin@desk.example", "s3cret-pass")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		identity, err := svc.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, identity.UserID)
		assert.Equal(t, profilerepo.RoleAdmin, identity.Role)
	})

	t.Run("wrong password fails", func(t *testing.T) {
		svc, _, _ := newService()

		_, err := svc.Register(context.Background(), "trader@desk.example", "Jordan", "s3cret-pass")
		require.NoError(t, err)

		_, err = svc.Login(context.Background(), "trader@desk.example", "wrong-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email fails", func(t *testing.T) {
		svc, _, _ := newService()
		_, err := svc.Login(context.Background(), "nobody@desk.example", "s3cret-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("deactivated account fails", func(t *testing.T) {
		svc, users, _ := newService()

		user, err := svc.Register(context.Background(), "trader@desk.example", "Jordan", "s3cret-pass")
		require.NoError(t, err)
		users.byID[user.ID].IsActive = false

		_, err = svc.Login(context.Background(), "trader@desk.example", "s3cret-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("garbage token fails", func(t *testing.T) {
		svc, _, _ := newService()
		_, err := svc.VerifyToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token signed with another secret fails", func(t *testing.T) {
		svc, _, _ := newService()

		otherSvc := NewService(newMockUsers(), &mockProfileRepo{byUserID: map[uuid.UUID]*profilerepo.Profile{}}, "other-secret", slog.New(slog.DiscardHandler))
		token, err := otherSvc.issueToken(uuid.New(), profilerepo.RoleUser)
		require.NoError(t, err)

		_, err = svc.VerifyToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
