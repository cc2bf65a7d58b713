package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/topline-app/topline/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for the role catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleSelect = `
	SELECT r.id, r.org_id, r.key, r.label, r.is_built_in,
	       (SELECT COUNT(*) FROM users u WHERE u.org_id = r.org_id AND u.role = r.key AND u.is_active),
	       r.created_at, r.updated_at
	FROM roles r`

func scanRole(row pgx.Row) (Role, error) {
	var r Role
	err := row.Scan(&r.ID, &r.OrgID, &r.Key, &r.Label, &r.IsBuiltIn, &r.AssignedUsers, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// List returns the org's catalog with live assignment counts.
func (r *Repository) List(ctx context.Context, orgID string) ([]Role, error) {
	rows, err := r.pool.Query(ctx, roleSelect+` WHERE r.org_id = $1 ORDER BY r.is_built_in DESC, r.label`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

// Get fetches one catalog entry within the org.
func (r *Repository) Get(ctx context.Context, orgID, id string) (Role, error) {
	row := r.pool.QueryRow(ctx, roleSelect+` WHERE r.org_id = $1 AND r.id = $2`, orgID, id)
	role, err := scanRole(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, httpx.ErrNotFound
	}
	return role, err
}

// Create inserts a custom role. Duplicate keys map to ErrDuplicate.
func (r *Repository) Create(ctx context.Context, role Role) (Role, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO roles (id, org_id, key, label, is_built_in, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())`,
		role.ID, role.OrgID, role.Key, role.Label)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Role{}, httpx.ErrDuplicate
		}
		return Role{}, err
	}
	return r.Get(ctx, role.OrgID, role.ID)
}

// Delete removes a custom role.
func (r *Repository) Delete(ctx context.Context, orgID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM roles WHERE org_id = $1 AND id = $2 AND NOT is_built_in`, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
