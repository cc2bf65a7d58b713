// Package roles manages the org's role catalog: the built-in taxonomy
// plus custom roles admins may add and remove.
package roles

import "time"

// Role is one catalog entry. AssignedUsers counts active accounts
// currently holding it; built-in roles cannot be deleted.
type Role struct {
	ID            string    `json:"id"`
	OrgID         string    `json:"orgId"`
	Key           string    `json:"key"`
	Label         string    `json:"label"`
	IsBuiltIn     bool      `json:"isBuiltIn"`
	AssignedUsers int       `json:"assignedUsers"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
