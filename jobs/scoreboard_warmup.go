package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/topline-app/topline/internal/observability"
	"github.com/topline-app/topline/internal/scoreboard"
)

// ScoreboardWarmupJob pre-populates leaderboard caches so the first
// request after an invalidation stays fast.
type ScoreboardWarmupJob struct {
	Scoreboard *scoreboard.Service
	Logger     *slog.Logger
	Metrics    *observability.Metrics
}

// NewScoreboardWarmupJob wires dependencies for the warmup handler.
func NewScoreboardWarmupJob(svc *scoreboard.Service, logger *slog.Logger, metrics *observability.Metrics) *ScoreboardWarmupJob {
	return &ScoreboardWarmupJob{Scoreboard: svc, Logger: logger, Metrics: metrics}
}

// Handle processes scoreboard warmup tasks.
func (j *ScoreboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Scoreboard == nil {
		return errors.New("scoreboard warmup: handler not configured")
	}
	defer func() { j.Metrics.ObserveJob(TaskScoreboardWarmup, err) }()

	var payload ScoreboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	orgIDs := []string{payload.OrgID}
	if payload.OrgID == "" {
		orgIDs, err = j.Scoreboard.OrgIDs(ctx)
		if err != nil {
			j.Logger.Error("load warmup orgs", slog.Any("error", err))
			return err
		}
	}
	if len(orgIDs) == 0 {
		j.Logger.Info("no orgs discovered for warmup")
		return nil
	}

	for _, orgID := range orgIDs {
		if err = j.Scoreboard.Warm(ctx, orgID); err != nil {
			j.Logger.Error("warm scoreboard", slog.String("org_id", orgID), slog.Any("error", err))
			return err
		}
	}
	j.Logger.Info("scoreboard warmup complete", slog.Int("orgs", len(orgIDs)))
	return nil
}
