package kpis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/topline-app/topline/internal/platform/httpx"
	"github.com/topline-app/topline/internal/policy"
	"github.com/topline-app/topline/internal/rank"
	"github.com/topline-app/topline/internal/shared"
)

// Known summary periods.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// RepositoryPort defines data access for KPI entries and targets.
type RepositoryPort interface {
	UpsertEntry(ctx context.Context, e Entry) (Entry, error)
	SumRange(ctx context.Context, orgID string, from, to time.Time) (Totals, error)
	FirstYearRevenue(ctx context.Context, orgID string) (int, float64, error)
	GetTarget(ctx context.Context, orgID string, year int) (Target, error)
	SetTarget(ctx context.Context, t Target) error
}

// GameBlock is the lightweight slice of the summary shown on the
// scoreboard header for every role.
type GameBlock struct {
	YearRevenue  float64 `json:"yearRevenue"`
	YearTarget   float64 `json:"yearTarget"`
	Progress     float64 `json:"progress"`
	Remaining    float64 `json:"remaining"`
	DailyRunRate float64 `json:"dailyRunRate"`
	GameState    string  `json:"gameState"`
}

// Service computes derived KPI metrics with a per-org summary cache.
type Service struct {
	repo  RepositoryPort
	redis *redis.Client
	ttl   time.Duration
	audit *shared.AuditLogger
	now   func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, client *redis.Client, ttl time.Duration, audit *shared.AuditLogger) *Service {
	return &Service{
		repo:  repo,
		redis: client,
		ttl:   ttl,
		audit: audit,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Record upserts one day of lag measures. Back office and managers only.
func (s *Service) Record(ctx context.Context, actor *shared.Principal, e Entry) (Entry, error) {
	if !canWrite(actor.Role) {
		return Entry{}, httpx.ErrForbidden
	}
	if e.Date.IsZero() {
		return Entry{}, fmt.Errorf("%w: date is required", httpx.ErrValidation)
	}
	if e.Revenue < 0 || e.Cost < 0 || e.Covers < 0 || e.Transactions < 0 || e.Employees < 0 || e.Budget < 0 {
		return Entry{}, fmt.Errorf("%w: measures cannot be negative", httpx.ErrValidation)
	}
	e.ID = uuid.NewString()
	e.OrgID = actor.OrgID
	e.Date = e.Date.Truncate(24 * time.Hour)
	saved, err := s.repo.UpsertEntry(ctx, e)
	if err != nil {
		return Entry{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		OrgID:    actor.OrgID,
		ActorID:  actor.UserID,
		Action:   "kpi.record",
		Entity:   "kpi_entry",
		EntityID: saved.ID,
		Meta:     map[string]any{"date": saved.Date.Format("2006-01-02")},
	})
	s.invalidate(ctx, actor.OrgID)
	return saved, nil
}

// SetTarget sets the annual revenue goal.
func (s *Service) SetTarget(ctx context.Context, actor *shared.Principal, year int, revenue float64) (Target, error) {
	if !canWrite(actor.Role) {
		return Target{}, httpx.ErrForbidden
	}
	if year <= 0 || revenue <= 0 {
		return Target{}, fmt.Errorf("%w: year and revenue must be positive", httpx.ErrValidation)
	}
	t := Target{OrgID: actor.OrgID, Year: year, Revenue: revenue}
	if err := s.repo.SetTarget(ctx, t); err != nil {
		return Target{}, err
	}
	s.invalidate(ctx, actor.OrgID)
	return s.repo.GetTarget(ctx, actor.OrgID, year)
}

// Summary returns the derived metric block for a period, cached per org.
func (s *Service) Summary(ctx context.Context, orgID, period string) (Summary, error) {
	period = normalizePeriod(period)
	key := summaryKey(orgID, period)
	if s.redis != nil {
		if payload, err := s.redis.Get(ctx, key).Bytes(); err == nil {
			var cached Summary
			if err := json.Unmarshal(payload, &cached); err == nil {
				return cached, nil
			}
		}
	}
	summary, err := s.buildSummary(ctx, orgID, period)
	if err != nil {
		return Summary{}, err
	}
	if s.redis != nil {
		if raw, err := json.Marshal(summary); err == nil {
			_ = s.redis.Set(ctx, key, raw, s.ttl).Err()
		}
	}
	return summary, nil
}

// Game returns the year-progress block shown to every role.
func (s *Service) Game(ctx context.Context, orgID string) (GameBlock, error) {
	summary, err := s.Summary(ctx, orgID, PeriodMonth)
	if err != nil {
		return GameBlock{}, err
	}
	return GameBlock{
		YearRevenue:  summary.YearRevenue,
		YearTarget:   summary.YearTarget,
		Progress:     summary.Progress,
		Remaining:    summary.Remaining,
		DailyRunRate: summary.DailyRunRate,
		GameState:    summary.GameState,
	}, nil
}

func (s *Service) buildSummary(ctx context.Context, orgID, period string) (Summary, error) {
	now := s.now()
	from, to := periodWindow(now, period)
	totals, err := s.repo.SumRange(ctx, orgID, from, to)
	if err != nil {
		return Summary{}, err
	}
	prevFrom, prevTo := previousWindow(now, period)
	prev, err := s.repo.SumRange(ctx, orgID, prevFrom, prevTo)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		OrgID:              orgID,
		Period:             period,
		Totals:             totals,
		AverageCheck:       rank.AverageCheck(totals.Revenue, float64(totals.Covers)),
		AverageTransaction: rank.AverageTransaction(totals.Revenue, float64(totals.Transactions)),
		RevenuePerEmployee: rank.RevenuePerEmployee(totals.Revenue, float64(totals.Employees)),
		CostPercent:        rank.CostPercent(totals.Cost, totals.Revenue),
		GrossMargin:        rank.GrossMargin(totals.Revenue, totals.Cost),
		VarianceToBudget:   rank.Variance(totals.Revenue, totals.Budget),
		RevenueTrend:       rank.Trend(totals.Revenue, prev.Revenue),
	}

	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	yearTotals, err := s.repo.SumRange(ctx, orgID, yearStart, yearStart.AddDate(1, 0, 0))
	if err != nil {
		return Summary{}, err
	}
	target, err := s.repo.GetTarget(ctx, orgID, now.Year())
	if err != nil {
		return Summary{}, err
	}
	totalDays := yearStart.AddDate(1, 0, 0).Sub(yearStart).Hours() / 24
	daysRemaining := int(totalDays) - now.YearDay()

	summary.YearRevenue = yearTotals.Revenue
	summary.YearTarget = target.Revenue
	summary.Progress = rank.Progress(yearTotals.Revenue, target.Revenue)
	summary.Remaining = rank.Remaining(yearTotals.Revenue, target.Revenue)
	summary.DailyRunRate = rank.DailyRunRate(yearTotals.Revenue, target.Revenue, float64(daysRemaining))
	summary.GameState = rank.GameState(yearTotals.Revenue, target.Revenue, float64(now.YearDay()), totalDays)

	firstYear, firstRevenue, err := s.repo.FirstYearRevenue(ctx, orgID)
	if err != nil {
		return Summary{}, err
	}
	if years := now.Year() - firstYear; firstYear > 0 && years > 0 {
		summary.RevenueGrowth = rank.CAGR(firstRevenue, yearTotals.Revenue, float64(years))
	}
	return summary, nil
}

func (s *Service) invalidate(ctx context.Context, orgID string) {
	if s.redis == nil {
		return
	}
	keys := make([]string, 0, 3)
	for _, period := range []string{PeriodToday, PeriodWeek, PeriodMonth} {
		keys = append(keys, summaryKey(orgID, period))
	}
	_ = s.redis.Del(ctx, keys...).Err()
}

func canWrite(role policy.Role) bool {
	return policy.IsManagerRole(role) || policy.IsBackofficeRole(role)
}

func summaryKey(orgID, period string) string {
	return fmt.Sprintf("kpis:summary:%s:%s", orgID, period)
}

func normalizePeriod(period string) string {
	switch period {
	case PeriodToday, PeriodWeek, PeriodMonth:
		return period
	default:
		return PeriodMonth
	}
}

func periodWindow(now time.Time, period string) (time.Time, time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch period {
	case PeriodToday:
		return day, day.AddDate(0, 0, 1)
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7)
	default:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
}

func previousWindow(now time.Time, period string) (time.Time, time.Time) {
	from, _ := periodWindow(now, period)
	switch period {
	case PeriodToday:
		return from.AddDate(0, 0, -1), from
	case PeriodWeek:
		return from.AddDate(0, 0, -7), from
	default:
		return from.AddDate(0, -1, 0), from
	}
}
