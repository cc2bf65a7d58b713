package logs

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/topline-app/topline/internal/platform/httpx"
	"github.com/topline-app/topline/internal/policy"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const logSelect = `
	SELECT l.id, l.org_id, l.behavior_id, b.name, l.user_id, u.name,
	       COALESCE(u.avatar, ''), l.points, COALESCE(l.note, ''),
	       l.verified, COALESCE(l.verified_by, ''), l.verified_at, l.created_at
	FROM behavior_logs l
	JOIN behaviors b ON b.id = l.behavior_id
	JOIN users u ON u.id = l.user_id
	WHERE l.deleted_at IS NULL`

func scanLog(row pgx.Row) (Log, error) {
	var l Log
	var verifiedAt pgtype.Timestamptz
	err := row.Scan(&l.ID, &l.OrgID, &l.BehaviorID, &l.BehaviorName, &l.UserID,
		&l.UserName, &l.Avatar, &l.Points, &l.Note, &l.Verified, &l.VerifiedByID,
		&verifiedAt, &l.CreatedAt)
	if err != nil {
		return Log{}, err
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		l.VerifiedAt = &t
	}
	return l, nil
}

// Create inserts a log entry and returns the joined row.
func (r *Repository) Create(ctx context.Context, l Log) (Log, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO behavior_logs (id, org_id, behavior_id, user_id, points, note, verified, created_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), FALSE, NOW())`,
		l.ID, l.OrgID, l.BehaviorID, l.UserID, l.Points, l.Note)
	if err != nil {
		return Log{}, err
	}
	return r.Get(ctx, l.OrgID, l.ID)
}

// Get fetches one log entry within the org.
func (r *Repository) Get(ctx context.Context, orgID, id string) (Log, error) {
	row := r.pool.QueryRow(ctx, logSelect+` AND l.org_id = $1 AND l.id = $2`, orgID, id)
	l, err := scanLog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Log{}, httpx.ErrNotFound
	}
	return l, err
}

// ListByUser returns one page of a user's logs, newest first, plus the
// total count for pagination.
func (r *Repository) ListByUser(ctx context.Context, orgID, userID string, limit, offset int) ([]Log, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM behavior_logs WHERE org_id = $1 AND user_id = $2 AND deleted_at IS NULL`,
		orgID, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		logSelect+` AND l.org_id = $1 AND l.user_id = $2 ORDER BY l.created_at DESC LIMIT $3 OFFSET $4`,
		orgID, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Log
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

// ListUnverified returns the unverified logs of an org, oldest first, for
// the manager verification queue.
func (r *Repository) ListUnverified(ctx context.Context, orgID string, limit int) ([]Log, error) {
	rows, err := r.pool.Query(ctx,
		logSelect+` AND l.org_id = $1 AND NOT l.verified ORDER BY l.created_at LIMIT $2`, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Log
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// SetVerification applies a verification state change atomically: the flag
// and both metadata columns are written in one statement.
func (r *Repository) SetVerification(ctx context.Context, orgID, id string, update policy.VerificationUpdate) error {
	verifiedBy := pgtype.Text{String: update.VerifiedByID, Valid: update.VerifiedByID != ""}
	verifiedAt := pgtype.Timestamptz{Time: update.VerifiedAt, Valid: !update.VerifiedAt.IsZero()}
	tag, err := r.pool.Exec(ctx,
		`UPDATE behavior_logs SET verified = $3, verified_by = $4, verified_at = $5
		 WHERE org_id = $1 AND id = $2 AND deleted_at IS NULL`,
		orgID, id, update.Verified, verifiedBy, verifiedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Delete soft-deletes a log entry.
func (r *Repository) Delete(ctx context.Context, orgID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE behavior_logs SET deleted_at = NOW() WHERE org_id = $1 AND id = $2 AND deleted_at IS NULL`,
		orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// CountUnverified returns the number of pending logs per org, used by the
// verification digest job.
func (r *Repository) CountUnverified(ctx context.Context, orgID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM behavior_logs WHERE org_id = $1 AND NOT verified AND deleted_at IS NULL`,
		orgID).Scan(&count)
	return count, err
}
