package auth

import (
	"time"

	"github.com/topline-app/topline/internal/policy"
)

// Account is the credential view of a user used during PIN login.
type Account struct {
	ID       string
	OrgID    string
	Name     string
	Role     policy.Role
	PINHash  string
	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
