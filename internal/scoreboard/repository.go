package scoreboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/topline-app/topline/internal/rank"
)

// Repository reads raw log rows for leaderboard aggregation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListEntries returns one row per surviving log in the window. Aggregation
// happens in memory so the ranking rules live in one place.
func (r *Repository) ListEntries(ctx context.Context, orgID string, from, to time.Time, verifiedOnly bool) ([]rank.LogEntry, error) {
	fromParam := pgtype.Timestamptz{Time: from, Valid: !from.IsZero()}
	toParam := pgtype.Timestamptz{Time: to, Valid: !to.IsZero()}
	rows, err := r.pool.Query(ctx,
		`SELECT l.user_id, u.name, COALESCE(u.avatar, ''), l.points
		 FROM behavior_logs l
		 JOIN users u ON u.id = l.user_id
		 WHERE l.org_id = $1
		   AND l.deleted_at IS NULL
		   AND u.is_active
		   AND ($2::timestamptz IS NULL OR l.created_at >= $2)
		   AND ($3::timestamptz IS NULL OR l.created_at < $3)
		   AND (NOT $4 OR l.verified)
		 ORDER BY l.created_at`,
		orgID, fromParam, toParam, verifiedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rank.LogEntry
	for rows.Next() {
		var e rank.LogEntry
		if err := rows.Scan(&e.UserID, &e.UserName, &e.Avatar, &e.Points); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListOrgIDs returns every active org, used by the warmup job to prime
// the leaderboard caches.
func (r *Repository) ListOrgIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM organizations WHERE is_active`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
