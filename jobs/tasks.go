// Package jobs defines the background tasks processed by cmd/worker.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskScoreboardWarmup pre-builds leaderboard caches per org.
	TaskScoreboardWarmup = "scoreboard:warmup"
	// TaskVerificationDigest reports pending verification counts per org.
	TaskVerificationDigest = "verification:digest"
)

// ScoreboardWarmupPayload scopes a warmup run. An empty OrgID warms
// every active org.
type ScoreboardWarmupPayload struct {
	OrgID string `json:"orgId,omitempty"`
}

// VerificationDigestPayload scopes a digest run.
type VerificationDigestPayload struct {
	OrgID string `json:"orgId,omitempty"`
}

// NewScoreboardWarmupTask constructs a warmup task.
func NewScoreboardWarmupTask(payload ScoreboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskScoreboardWarmup, data), nil
}

// NewVerificationDigestTask constructs a digest task.
func NewVerificationDigestTask(payload VerificationDigestPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVerificationDigest, data), nil
}
