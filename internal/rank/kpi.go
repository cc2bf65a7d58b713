package rank

import "math"

// KPI helpers turn raw revenue and count inputs into the derived metrics on
// the manager dashboard. Every division guards its denominator and returns
// 0 instead of failing; ratios are rounded half-away-from-zero to two
// decimal places.

// Game states for the scoreboard header.
const (
	GameNeutral     = "neutral"
	GameWinning     = "winning"
	GameLosing      = "losing"
	GameCelebrating = "celebrating"
)

// PaginationMeta describes one page of a listing.
type PaginationMeta struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// AverageCheck returns revenue per cover, 0 when covers is not positive.
func AverageCheck(revenue, covers float64) float64 {
	if covers <= 0 {
		return 0
	}
	return round2(revenue / covers)
}

// Trend returns the percentage change from previous to current, 0 when
// previous is zero.
func Trend(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return round2(100 * (current - previous) / previous)
}

// Variance returns the percentage deviation of actual from budget, 0 when
// budget is zero.
func Variance(actual, budget float64) float64 {
	if budget == 0 {
		return 0
	}
	return round2(100 * (actual - budget) / budget)
}

// CostPercent returns cost as a percentage of revenue. Deliberately not
// capped at 100: cost may legitimately exceed revenue.
func CostPercent(cost, revenue float64) float64 {
	if revenue == 0 {
		return 0
	}
	return round2(100 * cost / revenue)
}

// GrossMargin returns the margin percentage, which may be negative.
func GrossMargin(revenue, cost float64) float64 {
	if revenue == 0 {
		return 0
	}
	return round2(100 * (revenue - cost) / revenue)
}

// CAGR returns the compound annual growth rate as a percentage.
func CAGR(startValue, endValue, years float64) float64 {
	if startValue <= 0 || years == 0 {
		return 0
	}
	return round2(100 * (math.Pow(endValue/startValue, 1/years) - 1))
}

// RevenuePerEmployee returns revenue divided by headcount.
func RevenuePerEmployee(revenue, employees float64) float64 {
	if employees <= 0 {
		return 0
	}
	return round2(revenue / employees)
}

// AverageTransaction returns revenue divided by transaction count.
func AverageTransaction(revenue, count float64) float64 {
	if count <= 0 {
		return 0
	}
	return round2(revenue / count)
}

// Progress returns percentage progress toward a target, uncapped so
// over-performance reads above 100.
func Progress(current, target float64) float64 {
	if target == 0 {
		return 0
	}
	return round2(100 * current / target)
}

// Remaining returns how much of the target is left, never negative.
func Remaining(current, target float64) float64 {
	if current >= target {
		return 0
	}
	return target - current
}

// DailyRunRate returns the per-day pace needed to close the gap to target.
func DailyRunRate(current, target, daysRemaining float64) float64 {
	if daysRemaining <= 0 || current >= target {
		return 0
	}
	return round2((target - current) / daysRemaining)
}

// NewPaginationMeta computes listing metadata. A non-positive limit or a
// zero total yields zero pages.
func NewPaginationMeta(total, page, limit int) PaginationMeta {
	totalPages := 0
	if total > 0 && limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return PaginationMeta{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// GameState classifies year-to-date performance against an annual target.
// At or above target celebrates; otherwise pace is compared against the
// elapsed share of the year with a 5-point dead band.
func GameState(current, target, dayOfYear, totalDays float64) string {
	if target <= 0 {
		return GameNeutral
	}
	ratio := current / target
	if ratio >= 1 {
		return GameCelebrating
	}
	if totalDays <= 0 {
		return GameNeutral
	}
	delta := ratio - dayOfYear/totalDays
	switch {
	case delta >= 0.05:
		return GameWinning
	case delta <= -0.05:
		return GameLosing
	}
	return GameNeutral
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
