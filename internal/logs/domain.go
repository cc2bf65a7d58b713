// Package logs manages behavior log entries: staff record occurrences,
// managers verify them, and the scoreboard aggregates their points.
package logs

import "time"

// Log is one recorded behavior occurrence. Points are copied from the
// behavior at logging time so later point changes do not rewrite history.
type Log struct {
	ID           string     `json:"id"`
	OrgID        string     `json:"orgId"`
	BehaviorID   string     `json:"behaviorId"`
	BehaviorName string     `json:"behaviorName"`
	UserID       string     `json:"userId"`
	UserName     string     `json:"userName"`
	Avatar       string     `json:"avatar,omitempty"`
	Points       float64    `json:"points"`
	Note         string     `json:"note,omitempty"`
	Verified     bool       `json:"verified"`
	VerifiedByID string     `json:"verifiedById,omitempty"`
	VerifiedAt   *time.Time `json:"verifiedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}
