// Package behaviors manages the manager-defined lead measures staff are
// scored for performing.
package behaviors

import "time"

// Behavior is one scoreable lead measure, e.g. "suggest wine pairing".
type Behavior struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"orgId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Points      float64   `json:"points"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
