package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/topline-app/topline/internal/policy"
	"github.com/topline-app/topline/internal/shared"
)

// Service wraps the PIN login rules for the shared-device flow.
type Service struct {
	repo   Repository
	tokens *TokenManager
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Authenticate validates the PIN for the chosen user and issues a bearer
// token. Failures are indistinguishable to the caller: the shared device
// shows the same message for wrong PIN, unknown user and disabled account.
func (s *Service) Authenticate(ctx context.Context, orgID, userID, pin string) (string, *Account, error) {
	account, err := s.repo.FindAccount(ctx, orgID, userID)
	if err != nil {
		return "", nil, shared.ErrInvalidCredentials
	}
	if !account.IsActive || !policy.IsValidRole(account.Role) {
		return "", nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PINHash), []byte(pin)); err != nil {
		return "", nil, shared.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(account)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// HashPIN produces a bcrypt hash for storing a new PIN.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
