package scoreboard

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/topline-app/topline/internal/rank"
)

type mockRepo struct {
	entries      []rank.LogEntry
	prevEntries  []rank.LogEntry
	calls        int
	lastVerified bool
}

func (m *mockRepo) ListEntries(ctx context.Context, orgID string, from, to time.Time, verifiedOnly bool) ([]rank.LogEntry, error) {
	m.calls++
	m.lastVerified = verifiedOnly
	if !to.IsZero() {
		return m.prevEntries, nil
	}
	return m.entries, nil
}

func (m *mockRepo) ListOrgIDs(ctx context.Context) ([]string, error) {
	return []string{"org-1"}, nil
}

func newTestService(t *testing.T, repo RepositoryPort) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(repo, cache)
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestLeaderboardCaches(t *testing.T) {
	repo := &mockRepo{entries: []rank.LogEntry{
		{UserID: "u1", UserName: "Alice", Points: 10},
		{UserID: "u2", UserName: "Bob", Points: 20},
		{UserID: "u1", UserName: "Alice", Points: 15},
	}}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	ctx := context.Background()
	board, err := svc.Leaderboard(ctx, "org-1", Query{Period: PeriodAll})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(board.Entries) != 2 {
		t.Fatalf("expected 2 entries got %d", len(board.Entries))
	}
	if board.Entries[0].UserID != "u1" || board.Entries[0].Score != 25 {
		t.Fatalf("expected Alice on top with 25, got %#v", board.Entries[0])
	}
	if board.Entries[0].Medal != rank.MedalGold {
		t.Fatalf("expected gold medal, got %q", board.Entries[0].Medal)
	}
	if repo.calls != 1 {
		t.Fatalf("expected 1 repo call, got %d", repo.calls)
	}

	// Second call should hit cache.
	if _, err := svc.Leaderboard(ctx, "org-1", Query{Period: PeriodAll}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("expected cached result, repo called %d times", repo.calls)
	}

	// Bumping the cache should trigger reload.
	if err := svc.Bump(ctx); err != nil {
		t.Fatalf("bump failed: %v", err)
	}
	repo.entries = append(repo.entries, rank.LogEntry{UserID: "u2", UserName: "Bob", Points: 30})
	board, err = svc.Leaderboard(ctx, "org-1", Query{Period: PeriodAll})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if board.Entries[0].UserID != "u2" || board.Entries[0].Score != 50 {
		t.Fatalf("expected refreshed board led by Bob with 50, got %#v", board.Entries[0])
	}
	if repo.calls != 2 {
		t.Fatalf("expected repo to refresh, calls %d", repo.calls)
	}
}

func TestLeaderboardHonorsLimit(t *testing.T) {
	repo := &mockRepo{entries: []rank.LogEntry{
		{UserID: "u1", UserName: "Alice", Points: 30},
		{UserID: "u2", UserName: "Bob", Points: 20},
		{UserID: "u3", UserName: "Cara", Points: 10},
	}}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	board, err := svc.Leaderboard(context.Background(), "org-1", Query{Period: PeriodAll, Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(board.Entries) != 2 {
		t.Fatalf("expected board truncated to 2 entries, got %d", len(board.Entries))
	}
	if board.Entries[0].Rank != 1 || board.Entries[1].Rank != 2 {
		t.Fatalf("expected ranks assigned before truncation, got %#v", board.Entries)
	}
	// PercentOfTop is computed against the full board, not the cut.
	if board.Entries[1].PercentOfTop != 67 {
		t.Fatalf("expected 67 percent of top, got %v", board.Entries[1].PercentOfTop)
	}
}

func TestLeaderboardEmptyOrg(t *testing.T) {
	svc, cleanup := newTestService(t, &mockRepo{})
	defer cleanup()

	board, err := svc.Leaderboard(context.Background(), "org-1", Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if board.Entries == nil || len(board.Entries) != 0 {
		t.Fatalf("expected empty non-nil entries, got %#v", board.Entries)
	}
	if board.Period != PeriodAll {
		t.Fatalf("unknown period should fall back to all, got %q", board.Period)
	}
}

func TestLeaderboardVerifiedOnlyPassesThrough(t *testing.T) {
	repo := &mockRepo{}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	if _, err := svc.Leaderboard(context.Background(), "org-1", Query{VerifiedOnly: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.lastVerified {
		t.Fatalf("expected verified-only flag to reach the repository")
	}
}

func TestStandingComputesRankContext(t *testing.T) {
	repo := &mockRepo{
		entries: []rank.LogEntry{
			{UserID: "u1", UserName: "Alice", Points: 30},
			{UserID: "u2", UserName: "Bob", Points: 20},
			{UserID: "u3", UserName: "Cara", Points: 10},
		},
		prevEntries: []rank.LogEntry{
			{UserID: "u2", UserName: "Bob", Points: 40},
			{UserID: "u1", UserName: "Alice", Points: 30},
			{UserID: "u3", UserName: "Cara", Points: 10},
		},
	}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	standing, err := svc.Standing(context.Background(), "org-1", "u2", Query{Period: PeriodWeek})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if standing.Rank != 2 {
		t.Fatalf("expected rank 2, got %d", standing.Rank)
	}
	if standing.CompetitionRank != 2 {
		t.Fatalf("expected competition rank 2, got %d", standing.CompetitionRank)
	}
	if standing.PointsToNextRank != 11 {
		t.Fatalf("expected 11 points to next rank, got %v", standing.PointsToNextRank)
	}
	if standing.Medal != rank.MedalSilver {
		t.Fatalf("expected silver medal, got %q", standing.Medal)
	}
	// Bob led last week and sits second now.
	if standing.Movement != -1 {
		t.Fatalf("expected movement -1, got %d", standing.Movement)
	}
	if standing.MovementIndicator != rank.MovementDown {
		t.Fatalf("expected down indicator, got %q", standing.MovementIndicator)
	}
}

func TestStandingSumsSplitLogs(t *testing.T) {
	// Many small logs must outrank one big log when their totals do.
	repo := &mockRepo{
		entries: []rank.LogEntry{
			{UserID: "u1", UserName: "Alice", Points: 5},
			{UserID: "u2", UserName: "Bob", Points: 12},
			{UserID: "u1", UserName: "Alice", Points: 5},
			{UserID: "u1", UserName: "Alice", Points: 5},
		},
		prevEntries: []rank.LogEntry{
			{UserID: "u1", UserName: "Alice", Points: 5},
			{UserID: "u2", UserName: "Bob", Points: 12},
			{UserID: "u1", UserName: "Alice", Points: 5},
		},
	}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	standing, err := svc.Standing(context.Background(), "org-1", "u1", Query{Period: PeriodWeek})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if standing.Score != 15 {
		t.Fatalf("expected summed score 15, got %v", standing.Score)
	}
	if standing.Rank != 1 || standing.CompetitionRank != 1 {
		t.Fatalf("expected first place on summed points, got rank %d competition %d", standing.Rank, standing.CompetitionRank)
	}
	// Last week Alice's split logs only summed to 10, behind Bob.
	if standing.Movement != 1 || standing.MovementIndicator != rank.MovementUp {
		t.Fatalf("expected upward movement, got %d %q", standing.Movement, standing.MovementIndicator)
	}
}

func TestStandingUnknownUser(t *testing.T) {
	repo := &mockRepo{entries: []rank.LogEntry{{UserID: "u1", UserName: "Alice", Points: 30}}}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	standing, err := svc.Standing(context.Background(), "org-1", "ghost", Query{Period: PeriodAll})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if standing.Rank != 0 || standing.CompetitionRank != 0 || standing.Score != 0 {
		t.Fatalf("expected zero standing for unknown user, got %#v", standing)
	}
	if standing.MovementIndicator != rank.MovementSame {
		t.Fatalf("expected neutral indicator, got %q", standing.MovementIndicator)
	}
}
