package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/topline-app/topline/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for users.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, org_id, name, COALESCE(avatar, ''), role, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.OrgID, &u.Name, &u.Avatar, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// List returns the org's accounts, active first, then by name.
func (r *Repository) List(ctx context.Context, orgID string) ([]User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE org_id = $1 ORDER BY is_active DESC, name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Get fetches one account within the org.
func (r *Repository) Get(ctx context.Context, orgID, id string) (User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE org_id = $1 AND id = $2`, orgID, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, httpx.ErrNotFound
	}
	return u, err
}

// Create inserts an account. A duplicate name within the org maps to
// ErrDuplicate.
func (r *Repository) Create(ctx context.Context, u User, pinHash string) (User, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, org_id, name, avatar, role, pin_hash, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, TRUE, NOW(), NOW())`,
		u.ID, u.OrgID, u.Name, u.Avatar, u.Role, pinHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, httpx.ErrDuplicate
		}
		return User{}, err
	}
	return r.Get(ctx, u.OrgID, u.ID)
}

// UpdateProfile changes name and avatar.
func (r *Repository) UpdateProfile(ctx context.Context, orgID, id, name, avatar string) (User, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET name = $3, avatar = NULLIF($4, ''), updated_at = NOW()
		 WHERE org_id = $1 AND id = $2`, orgID, id, name, avatar)
	if err != nil {
		return User{}, err
	}
	if tag.RowsAffected() == 0 {
		return User{}, httpx.ErrNotFound
	}
	return r.Get(ctx, orgID, id)
}

// SetRole reassigns the account's role.
func (r *Repository) SetRole(ctx context.Context, orgID, id, role string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $3, updated_at = NOW() WHERE org_id = $1 AND id = $2`, orgID, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// SetPINHash rotates the login PIN.
func (r *Repository) SetPINHash(ctx context.Context, orgID, id, pinHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET pin_hash = $3, updated_at = NOW() WHERE org_id = $1 AND id = $2`, orgID, id, pinHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Deactivate disables login without losing log history.
func (r *Repository) Deactivate(ctx context.Context, orgID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
