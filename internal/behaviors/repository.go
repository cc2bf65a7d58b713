package behaviors

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/topline-app/topline/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const behaviorColumns = `id, org_id, name, description, points, is_active, created_at, updated_at`

func scanBehavior(row pgx.Row) (Behavior, error) {
	var b Behavior
	err := row.Scan(&b.ID, &b.OrgID, &b.Name, &b.Description, &b.Points,
		&b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// ListActive returns the active behaviors of an org ordered by name.
func (r *Repository) ListActive(ctx context.Context, orgID string) ([]Behavior, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+behaviorColumns+` FROM behaviors WHERE org_id = $1 AND is_active ORDER BY name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Behavior
	for rows.Next() {
		b, err := scanBehavior(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Get fetches one behavior within the org.
func (r *Repository) Get(ctx context.Context, orgID, id string) (Behavior, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+behaviorColumns+` FROM behaviors WHERE org_id = $1 AND id = $2`, orgID, id)
	b, err := scanBehavior(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Behavior{}, httpx.ErrNotFound
	}
	return b, err
}

// Create inserts a behavior. Duplicate names within an org map to
// httpx.ErrDuplicate via the unique constraint.
func (r *Repository) Create(ctx context.Context, b Behavior) (Behavior, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO behaviors (id, org_id, name, description, points, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
		 RETURNING `+behaviorColumns,
		b.ID, b.OrgID, b.Name, b.Description, b.Points)
	created, err := scanBehavior(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Behavior{}, httpx.ErrDuplicate
		}
		return Behavior{}, err
	}
	return created, nil
}

// Update rewrites the mutable fields of a behavior.
func (r *Repository) Update(ctx context.Context, b Behavior) (Behavior, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE behaviors SET name = $3, description = $4, points = $5, updated_at = NOW()
		 WHERE org_id = $1 AND id = $2
		 RETURNING `+behaviorColumns,
		b.OrgID, b.ID, b.Name, b.Description, b.Points)
	updated, err := scanBehavior(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Behavior{}, httpx.ErrNotFound
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Behavior{}, httpx.ErrDuplicate
		}
		return Behavior{}, err
	}
	return updated, nil
}

// Deactivate soft-deletes a behavior; existing logs keep referencing it.
func (r *Repository) Deactivate(ctx context.Context, orgID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE behaviors SET is_active = FALSE, updated_at = NOW() WHERE org_id = $1 AND id = $2 AND is_active`,
		orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
