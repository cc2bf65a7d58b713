package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCounter struct {
	counts map[string]int
	err    error
	asked  []string
}

func (s *stubCounter) CountUnverified(ctx context.Context, orgID string) (int, error) {
	s.asked = append(s.asked, orgID)
	return s.counts[orgID], s.err
}

type stubOrgs struct {
	ids []string
}

func (s *stubOrgs) ListOrgIDs(ctx context.Context) ([]string, error) {
	return s.ids, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestVerificationDigestCoversAllOrgs(t *testing.T) {
	counter := &stubCounter{counts: map[string]int{"org-1": 3, "org-2": 0}}
	job := NewVerificationDigestJob(counter, &stubOrgs{ids: []string{"org-1", "org-2"}}, discardLogger(), nil)

	task, err := NewVerificationDigestTask(VerificationDigestPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, []string{"org-1", "org-2"}, counter.asked)
}

func TestVerificationDigestScopedOrg(t *testing.T) {
	counter := &stubCounter{counts: map[string]int{"org-9": 1}}
	job := NewVerificationDigestJob(counter, &stubOrgs{}, discardLogger(), nil)

	task, err := NewVerificationDigestTask(VerificationDigestPayload{OrgID: "org-9"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, []string{"org-9"}, counter.asked)
}

func TestVerificationDigestPropagatesErrors(t *testing.T) {
	counter := &stubCounter{err: errors.New("db down")}
	job := NewVerificationDigestJob(counter, &stubOrgs{ids: []string{"org-1"}}, discardLogger(), nil)

	task, err := NewVerificationDigestTask(VerificationDigestPayload{})
	require.NoError(t, err)
	assert.Error(t, job.Handle(context.Background(), task))
}

func TestDigestBadPayloadSkipsRetry(t *testing.T) {
	job := NewVerificationDigestJob(&stubCounter{}, &stubOrgs{}, discardLogger(), nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskVerificationDigest, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
