package kpis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topline-app/topline/internal/platform/httpx"
	"github.com/topline-app/topline/internal/policy"
	"github.com/topline-app/topline/internal/rank"
	"github.com/topline-app/topline/internal/shared"
)

type mockRepo struct {
	totals    map[string]Totals
	target    Target
	firstYear int
	firstRev  float64
	sumCalls  int
	upserted  []Entry
}

func (m *mockRepo) UpsertEntry(ctx context.Context, e Entry) (Entry, error) {
	m.upserted = append(m.upserted, e)
	return e, nil
}

func (m *mockRepo) SumRange(ctx context.Context, orgID string, from, to time.Time) (Totals, error) {
	m.sumCalls++
	return m.totals[from.Format("2006-01-02")], nil
}

func (m *mockRepo) FirstYearRevenue(ctx context.Context, orgID string) (int, float64, error) {
	return m.firstYear, m.firstRev, nil
}

func (m *mockRepo) GetTarget(ctx context.Context, orgID string, year int) (Target, error) {
	return m.target, nil
}

func (m *mockRepo) SetTarget(ctx context.Context, t Target) error {
	m.target = t
	return nil
}

func newTestService(t *testing.T, repo RepositoryPort) (*Service, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, client, time.Minute, nil), client
}

func backofficePrincipal() *shared.Principal {
	return &shared.Principal{UserID: "acct-1", OrgID: "org-1", Role: policy.RoleAccountant}
}

func staffPrincipal() *shared.Principal {
	return &shared.Principal{UserID: "staff-1", OrgID: "org-1", Role: policy.RoleServer}
}

func TestRecordRequiresBackofficeOrManager(t *testing.T) {
	repo := &mockRepo{}
	svc, _ := newTestService(t, repo)

	_, err := svc.Record(context.Background(), staffPrincipal(), Entry{Date: time.Now()})
	assert.ErrorIs(t, err, httpx.ErrForbidden)
	assert.Empty(t, repo.upserted)

	_, err = svc.Record(context.Background(), backofficePrincipal(), Entry{
		Date: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), Revenue: 12000, Covers: 300,
	})
	require.NoError(t, err)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, "org-1", repo.upserted[0].OrgID)
}

func TestRecordRejectsNegativeMeasures(t *testing.T) {
	svc, _ := newTestService(t, &mockRepo{})
	_, err := svc.Record(context.Background(), backofficePrincipal(), Entry{
		Date: time.Now(), Revenue: -1,
	})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSummaryDerivesMetrics(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC) // day 182 of a 365-day year
	monthStart := "2026-07-01"
	prevMonthStart := "2026-06-01"
	yearStart := "2026-01-01"
	repo := &mockRepo{
		totals: map[string]Totals{
			monthStart:     {Revenue: 11000, Covers: 250, Cost: 3300, Transactions: 220, Employees: 10, Budget: 10000},
			prevMonthStart: {Revenue: 10000},
			yearStart:      {Revenue: 600000},
		},
		target: Target{OrgID: "org-1", Year: 2026, Revenue: 1000000},
	}
	svc, _ := newTestService(t, repo)
	svc.now = func() time.Time { return now }

	summary, err := svc.Summary(context.Background(), "org-1", PeriodMonth)
	require.NoError(t, err)

	assert.Equal(t, 44.0, summary.AverageCheck)
	assert.Equal(t, 50.0, summary.AverageTransaction)
	assert.Equal(t, 1100.0, summary.RevenuePerEmployee)
	assert.Equal(t, 30.0, summary.CostPercent)
	assert.Equal(t, 70.0, summary.GrossMargin)
	assert.Equal(t, 10.0, summary.VarianceToBudget, "11000 vs 10000 budget is +10 percent")
	assert.Equal(t, 10.0, summary.RevenueTrend)

	assert.Equal(t, 60.0, summary.Progress)
	assert.Equal(t, 400000.0, summary.Remaining)
	assert.Equal(t, rank.GameWinning, summary.GameState, "60 percent done at the half-year mark is winning")
}

func TestSummaryCachesPerOrg(t *testing.T) {
	repo := &mockRepo{totals: map[string]Totals{}}
	svc, _ := newTestService(t, repo)

	_, err := svc.Summary(context.Background(), "org-1", PeriodMonth)
	require.NoError(t, err)
	calls := repo.sumCalls

	_, err = svc.Summary(context.Background(), "org-1", PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, calls, repo.sumCalls, "second summary must come from cache")

	// A new entry invalidates the org's summaries.
	_, err = svc.Record(context.Background(), backofficePrincipal(), Entry{
		Date: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), Revenue: 500,
	})
	require.NoError(t, err)
	_, err = svc.Summary(context.Background(), "org-1", PeriodMonth)
	require.NoError(t, err)
	assert.Greater(t, repo.sumCalls, calls, "summary must rebuild after a write")
}

func TestSetTargetValidates(t *testing.T) {
	svc, _ := newTestService(t, &mockRepo{})
	_, err := svc.SetTarget(context.Background(), backofficePrincipal(), 0, 100)
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.SetTarget(context.Background(), staffPrincipal(), 2026, 100)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestGameFallsBackToNeutralWithoutTarget(t *testing.T) {
	repo := &mockRepo{totals: map[string]Totals{}}
	svc, _ := newTestService(t, repo)

	game, err := svc.Game(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, rank.GameNeutral, game.GameState)
	assert.Zero(t, game.Progress)
}
