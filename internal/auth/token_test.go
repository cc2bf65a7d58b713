package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topline-app/topline/internal/policy"
)

func testAccount() *Account {
	return &Account{
		ID:       "user-1",
		OrgID:    "org-1",
		Name:     "Alice",
		Role:     policy.RoleServer,
		IsActive: true,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Issue(testAccount())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "org-1", claims.OrgID)
	assert.Equal(t, "SERVER", claims.Role)
	assert.Equal(t, "Alice", claims.Name)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	_, err := tm.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	token, err := tm.Issue(testAccount())
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Minute)
	token, err := tm.Issue(testAccount())
	require.NoError(t, err)

	tm.now = func() time.Time { return time.Now().UTC().Add(2 * time.Minute) }
	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	account := testAccount()
	account.Role = policy.Role("INTERN")

	token, err := tm.Issue(account)
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
