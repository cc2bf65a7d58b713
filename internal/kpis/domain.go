// Package kpis stores lag-measure results (revenue, covers, costs) and
// derives the dashboard metrics staff see next to the scoreboard.
package kpis

import "time"

// Entry is one day of lag measures for an org. Upserts are keyed on
// (org, date) so resubmitting a day replaces it.
type Entry struct {
	ID           string    `json:"id"`
	OrgID        string    `json:"orgId"`
	Date         time.Time `json:"date"`
	Revenue      float64   `json:"revenue"`
	Covers       int       `json:"covers"`
	Cost         float64   `json:"cost"`
	Transactions int       `json:"transactions"`
	Employees    int       `json:"employees"`
	Budget       float64   `json:"budget"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Target is the annual revenue goal driving progress and game state.
type Target struct {
	OrgID     string    `json:"orgId"`
	Year      int       `json:"year"`
	Revenue   float64   `json:"revenue"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Totals is the aggregate of a date range.
type Totals struct {
	Revenue      float64 `json:"revenue"`
	Covers       int     `json:"covers"`
	Cost         float64 `json:"cost"`
	Transactions int     `json:"transactions"`
	Employees    int     `json:"employees"`
	Budget       float64 `json:"budget"`
}

// Summary is the derived metric block for the dashboard.
type Summary struct {
	OrgID  string `json:"orgId"`
	Period string `json:"period"`

	Totals Totals `json:"totals"`

	AverageCheck       float64 `json:"averageCheck"`
	AverageTransaction float64 `json:"averageTransaction"`
	RevenuePerEmployee float64 `json:"revenuePerEmployee"`
	CostPercent        float64 `json:"costPercent"`
	GrossMargin        float64 `json:"grossMargin"`
	VarianceToBudget   float64 `json:"varianceToBudget"`
	RevenueTrend       float64 `json:"revenueTrend"`

	YearRevenue   float64 `json:"yearRevenue"`
	YearTarget    float64 `json:"yearTarget"`
	Progress      float64 `json:"progress"`
	Remaining     float64 `json:"remaining"`
	DailyRunRate  float64 `json:"dailyRunRate"`
	GameState     string  `json:"gameState"`
	RevenueGrowth float64 `json:"revenueGrowth"`
}
