// Package scoreboard turns behavior logs into leaderboards. Boards are
// built in memory from raw log rows and cached in Redis behind a global
// version that log mutations bump.
package scoreboard

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/topline-app/topline/internal/rank"
)

// Known board periods. Anything else falls back to PeriodAll.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"
)

const defaultBoardLimit = 10

// Query selects which board to build.
type Query struct {
	Period       string
	Limit        int
	VerifiedOnly bool
}

// Board is a rendered leaderboard.
type Board struct {
	Period      string       `json:"period"`
	Entries     []rank.Entry `json:"entries"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// Standing is one user's view of their own position.
type Standing struct {
	UserID            string  `json:"userId"`
	Period            string  `json:"period"`
	Rank              int     `json:"rank"`
	CompetitionRank   int     `json:"competitionRank"`
	Score             float64 `json:"score"`
	Medal             string  `json:"medal,omitempty"`
	PointsToNextRank  float64 `json:"pointsToNextRank"`
	Percentile        float64 `json:"percentile"`
	Movement          int     `json:"movement"`
	MovementIndicator string  `json:"movementIndicator"`
}

// RepositoryPort exposes the log rows the board is built from.
type RepositoryPort interface {
	ListEntries(ctx context.Context, orgID string, from, to time.Time, verifiedOnly bool) ([]rank.LogEntry, error)
	ListOrgIDs(ctx context.Context) ([]string, error)
}

// Service coordinates board building with the cache layer.
type Service struct {
	repo  RepositoryPort
	cache *Cache
	group singleflight.Group
	now   func() time.Time
}

// NewService wires a RepositoryPort with a Cache helper.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: func() time.Time { return time.Now().UTC() }}
}

// Bump invalidates every cached board. Called by the logs service after
// any mutation.
func (s *Service) Bump(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// Leaderboard returns the ranked board for an org and period.
func (s *Service) Leaderboard(ctx context.Context, orgID string, q Query) (Board, error) {
	q = normalizeQuery(q)
	key, err := s.cache.BuildKey(ctx, keyBoard(orgID, q.Period, q.Limit, q.VerifiedOnly))
	if err != nil {
		return Board{}, err
	}
	var board Board
	err = s.cache.FetchJSON(ctx, key, &board, func(ctx context.Context) (interface{}, error) {
		value, err, _ := s.buildOnce(ctx, key, func(ctx context.Context) (interface{}, error) {
			return s.buildBoard(ctx, orgID, q)
		})
		return value, err
	})
	return board, err
}

// Standing returns one user's rank context: both tie policies, distance to
// the next rank, percentile, and movement against the previous period.
func (s *Service) Standing(ctx context.Context, orgID, userID string, q Query) (Standing, error) {
	q = normalizeQuery(q)
	key, err := s.cache.BuildKey(ctx, keyStanding(orgID, userID, q.Period, q.VerifiedOnly))
	if err != nil {
		return Standing{}, err
	}
	var standing Standing
	err = s.cache.FetchJSON(ctx, key, &standing, func(ctx context.Context) (interface{}, error) {
		value, err, _ := s.buildOnce(ctx, key, func(ctx context.Context) (interface{}, error) {
			return s.buildStanding(ctx, orgID, userID, q)
		})
		return value, err
	})
	return standing, err
}

// Warm primes the default boards for an org. Used by the warmup cron.
func (s *Service) Warm(ctx context.Context, orgID string) error {
	for _, period := range []string{PeriodToday, PeriodWeek, PeriodMonth, PeriodAll} {
		if _, err := s.Leaderboard(ctx, orgID, Query{Period: period}); err != nil {
			return err
		}
	}
	return nil
}

// OrgIDs lists orgs eligible for warmup.
func (s *Service) OrgIDs(ctx context.Context) ([]string, error) {
	return s.repo.ListOrgIDs(ctx)
}

func (s *Service) buildOnce(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error, bool) {
	resultChan := s.group.DoChan(key, func() (interface{}, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}

func (s *Service) buildBoard(ctx context.Context, orgID string, q Query) (Board, error) {
	from, to := periodWindow(s.now(), q.Period)
	entries, err := s.repo.ListEntries(ctx, orgID, from, to, q.VerifiedOnly)
	if err != nil {
		return Board{}, err
	}
	ranked := rank.BuildEnhancedLeaderboard(entries)
	if q.Limit > 0 && len(ranked) > q.Limit {
		ranked = ranked[:q.Limit]
	}
	if ranked == nil {
		ranked = []rank.Entry{}
	}
	return Board{Period: q.Period, Entries: ranked, GeneratedAt: s.now()}, nil
}

func (s *Service) buildStanding(ctx context.Context, orgID, userID string, q Query) (Standing, error) {
	now := s.now()
	from, to := periodWindow(now, q.Period)
	entries, err := s.repo.ListEntries(ctx, orgID, from, to, q.VerifiedOnly)
	if err != nil {
		return Standing{}, err
	}
	board := rank.BuildEnhancedLeaderboard(entries)
	standing := Standing{UserID: userID, Period: q.Period, MovementIndicator: rank.MovementIndicator(0)}

	current := 0
	for _, entry := range board {
		if entry.UserID != userID {
			continue
		}
		current = entry.Rank
		standing.Rank = entry.Rank
		standing.Score = entry.Score
		standing.Medal = entry.Medal
		standing.PointsToNextRank = rank.PointsToNextRank(userID, board)
		standing.Percentile = rank.Percentile(entry.Score, scoresOf(board))
	}
	standing.CompetitionRank = rank.CalculateRankWithTies(userID, countsOf(entries))

	if prev := s.previousRank(ctx, orgID, userID, q, now); prev > 0 && current > 0 {
		standing.Movement = rank.RankMovement(prev, current)
		standing.MovementIndicator = rank.MovementIndicator(standing.Movement)
	}
	return standing, nil
}

// previousRank looks one window back for movement arrows. Errors degrade
// to no movement rather than failing the request.
func (s *Service) previousRank(ctx context.Context, orgID, userID string, q Query, now time.Time) int {
	from, to := previousWindow(now, q.Period)
	if from.IsZero() && to.IsZero() {
		return 0
	}
	entries, err := s.repo.ListEntries(ctx, orgID, from, to, q.VerifiedOnly)
	if err != nil {
		return 0
	}
	return rank.CalculateRank(userID, countsOf(entries))
}

// countsOf sums points per user so rank lookups compare one total per
// user, not one row per log.
func countsOf(entries []rank.LogEntry) []rank.UserCount {
	index := make(map[string]int, len(entries))
	counts := make([]rank.UserCount, 0, len(entries))
	for _, e := range entries {
		i, ok := index[e.UserID]
		if !ok {
			i = len(counts)
			index[e.UserID] = i
			counts = append(counts, rank.UserCount{UserID: e.UserID})
		}
		counts[i].Count += e.Points
	}
	return counts
}

func scoresOf(board []rank.Entry) []float64 {
	out := make([]float64, len(board))
	for i, e := range board {
		out[i] = e.Score
	}
	return out
}

func normalizeQuery(q Query) Query {
	switch q.Period {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodAll:
	default:
		q.Period = PeriodAll
	}
	if q.Limit <= 0 {
		q.Limit = defaultBoardLimit
	}
	return q
}

// periodWindow maps a period name onto [from, to). Zero bounds mean
// unbounded.
func periodWindow(now time.Time, period string) (time.Time, time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch period {
	case PeriodToday:
		return day, time.Time{}
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7 // Monday start
		return day.AddDate(0, 0, -offset), time.Time{}
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), time.Time{}
	default:
		return time.Time{}, time.Time{}
	}
}

func previousWindow(now time.Time, period string) (time.Time, time.Time) {
	from, _ := periodWindow(now, period)
	switch period {
	case PeriodToday:
		return from.AddDate(0, 0, -1), from
	case PeriodWeek:
		return from.AddDate(0, 0, -7), from
	case PeriodMonth:
		return from.AddDate(0, -1, 0), from
	default:
		return time.Time{}, time.Time{}
	}
}
