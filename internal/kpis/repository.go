package kpis

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for KPI data.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertEntry writes one day of lag measures, replacing an existing row
// for the same org and date.
func (r *Repository) UpsertEntry(ctx context.Context, e Entry) (Entry, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO kpi_entries (id, org_id, date, revenue, covers, cost, transactions, employees, budget, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		 ON CONFLICT (org_id, date) DO UPDATE SET
		   revenue = EXCLUDED.revenue, covers = EXCLUDED.covers, cost = EXCLUDED.cost,
		   transactions = EXCLUDED.transactions, employees = EXCLUDED.employees,
		   budget = EXCLUDED.budget, updated_at = NOW()
		 RETURNING id, org_id, date, revenue, covers, cost, transactions, employees, budget, created_at, updated_at`,
		e.ID, e.OrgID, e.Date, e.Revenue, e.Covers, e.Cost, e.Transactions, e.Employees, e.Budget)
	var out Entry
	err := row.Scan(&out.ID, &out.OrgID, &out.Date, &out.Revenue, &out.Covers, &out.Cost,
		&out.Transactions, &out.Employees, &out.Budget, &out.CreatedAt, &out.UpdatedAt)
	return out, err
}

// SumRange aggregates entries in [from, to). Employees reports the latest
// headcount in the range rather than a sum.
func (r *Repository) SumRange(ctx context.Context, orgID string, from, to time.Time) (Totals, error) {
	var t Totals
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(revenue), 0), COALESCE(SUM(covers), 0), COALESCE(SUM(cost), 0),
		        COALESCE(SUM(transactions), 0),
		        COALESCE((SELECT employees FROM kpi_entries
		                  WHERE org_id = $1 AND date >= $2 AND date < $3
		                  ORDER BY date DESC LIMIT 1), 0),
		        COALESCE(SUM(budget), 0)
		 FROM kpi_entries WHERE org_id = $1 AND date >= $2 AND date < $3`,
		orgID, from, to).Scan(&t.Revenue, &t.Covers, &t.Cost, &t.Transactions, &t.Employees, &t.Budget)
	return t, err
}

// FirstYearRevenue returns the earliest year with entries and its revenue
// total, used for the long-run growth rate.
func (r *Repository) FirstYearRevenue(ctx context.Context, orgID string) (int, float64, error) {
	var year int
	var revenue float64
	err := r.pool.QueryRow(ctx,
		`SELECT EXTRACT(YEAR FROM date)::int AS y, SUM(revenue)
		 FROM kpi_entries WHERE org_id = $1
		 GROUP BY y ORDER BY y LIMIT 1`, orgID).Scan(&year, &revenue)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, nil
	}
	return year, revenue, err
}

// GetTarget fetches the annual revenue target, zero when unset.
func (r *Repository) GetTarget(ctx context.Context, orgID string, year int) (Target, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT org_id, year, revenue, updated_at FROM kpi_targets WHERE org_id = $1 AND year = $2`,
		orgID, year)
	var t Target
	err := row.Scan(&t.OrgID, &t.Year, &t.Revenue, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Target{OrgID: orgID, Year: year}, nil
	}
	return t, err
}

// SetTarget upserts the annual revenue target.
func (r *Repository) SetTarget(ctx context.Context, t Target) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO kpi_targets (org_id, year, revenue, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (org_id, year) DO UPDATE SET revenue = EXCLUDED.revenue, updated_at = NOW()`,
		t.OrgID, t.Year, t.Revenue)
	return err
}
