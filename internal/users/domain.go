// Package users manages the per-org staff accounts behind the shared
// device login.
package users

import (
	"time"

	"github.com/topline-app/topline/internal/policy"
)

// User is one staff account. The PIN hash never leaves the repository
// layer.
type User struct {
	ID        string      `json:"id"`
	OrgID     string      `json:"orgId"`
	Name      string      `json:"name"`
	Avatar    string      `json:"avatar,omitempty"`
	Role      policy.Role `json:"role"`
	IsActive  bool        `json:"isActive"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
