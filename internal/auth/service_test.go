package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/topline-app/topline/internal/policy"
	"github.com/topline-app/topline/internal/shared"
)

type stubRepo struct {
	account *Account
	err     error
}

func (s *stubRepo) FindAccount(ctx context.Context, orgID, userID string) (*Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.account, nil
}

func hashedAccount(t *testing.T, pin string) *Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	require.NoError(t, err)
	account := testAccount()
	account.PINHash = string(hash)
	return account
}

func TestAuthenticateSuccess(t *testing.T) {
	svc := NewService(&stubRepo{account: hashedAccount(t, "4321")}, NewTokenManager("s", time.Hour))

	token, account, err := svc.Authenticate(context.Background(), "org-1", "user-1", "4321")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "user-1", account.ID)
}

func TestAuthenticateWrongPIN(t *testing.T) {
	svc := NewService(&stubRepo{account: hashedAccount(t, "4321")}, NewTokenManager("s", time.Hour))

	_, _, err := svc.Authenticate(context.Background(), "org-1", "user-1", "9999")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := NewService(&stubRepo{err: shared.ErrNotFound}, NewTokenManager("s", time.Hour))

	_, _, err := svc.Authenticate(context.Background(), "org-1", "ghost", "4321")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	account := hashedAccount(t, "4321")
	account.IsActive = false
	svc := NewService(&stubRepo{account: account}, NewTokenManager("s", time.Hour))

	_, _, err := svc.Authenticate(context.Background(), "org-1", "user-1", "4321")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownRole(t *testing.T) {
	account := hashedAccount(t, "4321")
	account.Role = policy.Role("INTERN")
	svc := NewService(&stubRepo{account: account}, NewTokenManager("s", time.Hour))

	_, _, err := svc.Authenticate(context.Background(), "org-1", "user-1", "4321")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
