package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/cashdesk"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/config"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/dto"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/model"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memUserRepo struct {
	users   map[string]*model.User
	findErr error // when set, FindByUsername fails with it unconditionally
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{users: make(map[string]*model.User)} }

func (r *memUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.Username] = u
	return nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok || !u.Active {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func seedUser(t *testing.T, repo *memUserRepo, tenantID uuid.UUID, username, password, role string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		TenantID:     tenantID,
		Username:     username,
		Name:         username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func testAuthService(repo repository.UserRepository) AuthService {
	return NewAuthService(repo, &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
	})
}

func TestLogin(t *testing.T) {
	repo := newMemUserRepo()
	tenantID := uuid.New()
	seedUser(t, repo, tenantID, "operator@demo.local", "1234", model.RoleOperator)
	svc := testAuthService(repo)
	ctx := context.Background()

	resp, err := svc.Login(ctx, dto.LoginRequest{Username: "operator@demo.local", Password: "1234"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, tenantID.String(), resp.User.TenantID)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "operator@demo.local", Password: "wrong"})
	assert.Error(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "ghost@demo.local", Password: "1234"})
	assert.Error(t, err)
}

func TestRefreshRoundTrip(t *testing.T) {
	repo := newMemUserRepo()
	seedUser(t, repo, uuid.New(), "operator@demo.local", "1234", model.RoleOperator)
	svc := testAuthService(repo)
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{Username: "operator@demo.local", Password: "1234"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Refresh(ctx, "not-a-token")
	assert.Error(t, err)
}

func TestVerifyManager(t *testing.T) {
	repo := newMemUserRepo()
	tenantID := uuid.New()
	manager := seedUser(t, repo, tenantID, "manager@demo.local", "4321", model.RoleManager)
	seedUser(t, repo, tenantID, "operator@demo.local", "1234", model.RoleOperator)
	seedUser(t, repo, uuid.New(), "outsider@demo.local", "4321", model.RoleManager)
	svc := testAuthService(repo)
	ctx := context.Background()

	got, err := svc.VerifyManager(ctx, tenantID, dto.ManagerCredentials{Username: "manager@demo.local", Password: "4321"})
	require.NoError(t, err)
	assert.Equal(t, manager.ID, got.ID)

	// Wrong password.
	_, err = svc.VerifyManager(ctx, tenantID, dto.ManagerCredentials{Username: "manager@demo.local", Password: "bad"})
	assert.ErrorIs(t, err, cashdesk.ErrInvalidManagerCredentials)

	// Operators cannot authorize a close.
	_, err = svc.VerifyManager(ctx, tenantID, dto.ManagerCredentials{Username: "operator@demo.local", Password: "1234"})
	assert.ErrorIs(t, err, cashdesk.ErrInvalidManagerCredentials)

	// Valid manager from another tenant is rejected the same way.
	_, err = svc.VerifyManager(ctx, tenantID, dto.ManagerCredentials{Username: "outsider@demo.local", Password: "4321"})
	assert.ErrorIs(t, err, cashdesk.ErrInvalidManagerCredentials)
}

func TestVerifyManagerPropagatesStoreFailure(t *testing.T) {
	repo := newMemUserRepo()
	repo.findErr = errors.New("connection refused")
	svc := testAuthService(repo)

	// An unreachable user store is not an invalid credential.
	_, err := svc.VerifyManager(context.Background(), uuid.New(), dto.ManagerCredentials{Username: "manager@demo.local", Password: "4321"})
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.findErr)
	assert.NotErrorIs(t, err, cashdesk.ErrInvalidManagerCredentials)
}
