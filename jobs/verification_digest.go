package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/topline-app/topline/internal/observability"
)

// PendingCounter reports the verification backlog per org.
type PendingCounter interface {
	CountUnverified(ctx context.Context, orgID string) (int, error)
}

// OrgLister enumerates the orgs a digest run covers.
type OrgLister interface {
	ListOrgIDs(ctx context.Context) ([]string, error)
}

// VerificationDigestJob logs the unverified backlog per org so managers
// with an empty queue never get paged about it. Delivery beyond the log
// stream is out of scope for now.
type VerificationDigestJob struct {
	Counter PendingCounter
	Orgs    OrgLister
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// NewVerificationDigestJob wires dependencies for the digest handler.
func NewVerificationDigestJob(counter PendingCounter, orgs OrgLister, logger *slog.Logger, metrics *observability.Metrics) *VerificationDigestJob {
	return &VerificationDigestJob{Counter: counter, Orgs: orgs, Logger: logger, Metrics: metrics}
}

// Handle processes verification digest tasks.
func (j *VerificationDigestJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Counter == nil || j.Orgs == nil {
		return errors.New("verification digest: handler not configured")
	}
	defer func() { j.Metrics.ObserveJob(TaskVerificationDigest, err) }()

	var payload VerificationDigestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	orgIDs := []string{payload.OrgID}
	if payload.OrgID == "" {
		orgIDs, err = j.Orgs.ListOrgIDs(ctx)
		if err != nil {
			j.Logger.Error("load digest orgs", slog.Any("error", err))
			return err
		}
	}

	for _, orgID := range orgIDs {
		pending, err := j.Counter.CountUnverified(ctx, orgID)
		if err != nil {
			j.Logger.Error("count unverified", slog.String("org_id", orgID), slog.Any("error", err))
			return err
		}
		if pending == 0 {
			continue
		}
		j.Logger.Info("verification digest",
			slog.String("org_id", orgID),
			slog.Int("pending", pending))
	}
	return nil
}
